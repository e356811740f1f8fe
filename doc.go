// Package shelf is the composition root for shelf, a toolkit for repositories
// of versioned source-code libraries.
//
// It connects the core domain (libraries, descriptors, naming strategies) with
// the filesystem adapter, using functional options for configuration.
//
// A repository is a directory tree. Each library lives in its own directory,
// located through a naming strategy, and carries a descriptor in one of two
// generations:
//
//   - library.properties: the current key=value descriptor.
//   - spark.json: the legacy JSON descriptor.
//
// Source and header files are stored flat in the library directory; example
// sketches keep their relative path under examples/.
//
// Usage:
//
//	svc, err := shelf.New("./libraries",
//		shelf.WithNaming(naming.ByNameAtVersion{}),
//		shelf.WithLogger(logger),
//	)
//
//	lib, err := svc.FetchLibrary(ctx, "blink@1.0.0")
//
// Libraries are published to a remote catalog through package contrib.
package shelf
