package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/core"
)

// Init opens the repository rooted at path.
//
// It returns the injected repository when WithRepository is used, and a
// filesystem repository otherwise.
func Init(path string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.repository != nil {
		return o.repository, nil
	}

	repo, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Open creates and initializes a filesystem repository rooted at path.
func Open(path string, opts ...Option) (*fs.Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("repository path is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var serializers map[core.Layout]fs.Serializer
	if len(o.serializers) > 0 {
		serializers = fs.DefaultSerializers()
		for layout, s := range o.serializers {
			if s.Layout() != layout {
				return nil, fmt.Errorf("serializer for layout %s reports layout %s", layout, s.Layout())
			}
			serializers[layout] = s
		}
	}

	repo := fs.NewRepository(fs.Config{
		Path:         path,
		Fs:           o.fs,
		Naming:       o.naming,
		ReadOnly:     o.readOnly,
		MustExist:    o.mustExist || !o.autoInit,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
		Serializers:  serializers,
	})

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("repository opened", "path", path, "read_only", o.readOnly, "writable", repo.Writable())
	}
	return repo, nil
}
