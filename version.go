package shelf

// Version is the release of the shelf module, set at build time with
// -ldflags "-X github.com/aretw0/shelf.Version=v1.2.3".
var Version = "dev"
