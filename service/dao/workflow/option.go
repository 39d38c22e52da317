package workflow

import "github.com/viant/afs"

// Option configures the registry
type Option func(*Service)

// WithFS sets the storage service used to load definition documents
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}
