// Package cache provides a read-through directory decorator with bounded,
// expiring entries.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/directory"
	"golang.org/x/sync/singleflight"
)

// Service caches user and role member lookups of the wrapped directory
type Service struct {
	directory directory.Directory
	users     *expirable.LRU[string, *model.User]
	members   *expirable.LRU[string, []string]
	// loads coalesces concurrent misses of the same key; a shared load runs
	// detached from the cancellation of the caller that started it
	loads singleflight.Group
}

var _ directory.Directory = (*Service)(nil)

var _ directory.Purger = (*Service)(nil)

// FindActiveUsersByRoles returns cached role members; empty results are not
// cached so that newly granted roles are seen on the next lookup
func (s *Service) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	key := directory.RoleKey(roleIDs)
	if ids, ok := s.members.Get(key); ok {
		return append([]string(nil), ids...), nil
	}
	shared := context.WithoutCancel(ctx)
	value, err, _ := s.loads.Do("roles:"+key, func() (interface{}, error) {
		ids, err := s.directory.FindActiveUsersByRoles(shared, roleIDs)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			s.members.Add(key, append([]string(nil), ids...))
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), value.([]string)...), nil
}

// GetUser returns cached user; lookup errors are not cached
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	if user, ok := s.users.Get(id); ok {
		return user.Clone(), nil
	}
	shared := context.WithoutCancel(ctx)
	value, err, _ := s.loads.Do("user:"+id, func() (interface{}, error) {
		user, err := s.directory.GetUser(shared, id)
		if err != nil {
			return nil, err
		}
		s.users.Add(id, user.Clone())
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*model.User).Clone(), nil
}

// Purge drops all cached entries
func (s *Service) Purge() {
	s.users.Purge()
	s.members.Purge()
}

// New wraps directory with a cache of size entries per lookup kind, each
// living for ttl
func New(directory directory.Directory, size int, ttl time.Duration) *Service {
	return &Service{
		directory: directory,
		users:     expirable.NewLRU[string, *model.User](size, nil, ttl),
		members:   expirable.NewLRU[string, []string](size, nil, ttl),
	}
}
