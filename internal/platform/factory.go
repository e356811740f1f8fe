package platform

import (
	"github.com/aretw0/shelf/pkg/core"
)

// New creates a service over the repository at path.
//
//	svc, err := shelf.New("./libraries", shelf.WithNaming(naming.ByNameAtVersion{}))
func New(path string, opts ...Option) (*core.Service, error) {
	repo, err := Init(path, opts...)
	if err != nil {
		return nil, err
	}
	return core.NewService(repo), nil
}
