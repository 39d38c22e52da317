// Package directory defines the read-only user and role lookups the engine
// resolves assignees against.
package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/viant/approvalflow/model"
)

// Directory resolves users and role membership
type Directory interface {
	// FindActiveUsersByRoles returns ids of active users holding any of roleIDs
	FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error)
	// GetUser returns a user or an error wrapping dao.ErrNotFound
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Purger is implemented by directories that hold cached lookups
type Purger interface {
	// Purge drops cached lookups so that the next ones reach the backend
	Purge()
}

// RoleKey returns an order independent key for a role set
func RoleKey(roleIDs []string) string {
	sorted := append([]string(nil), roleIDs...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// Snapshot memoizes lookups so that one advancement sees a consistent view
type Snapshot struct {
	directory Directory
	mux       sync.Mutex
	users     map[string]*model.User
	roles     map[string][]string
}

// FindActiveUsersByRoles returns memoized role members
func (s *Snapshot) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	key := RoleKey(roleIDs)
	s.mux.Lock()
	defer s.mux.Unlock()
	if ids, ok := s.roles[key]; ok {
		return append([]string(nil), ids...), nil
	}
	ids, err := s.directory.FindActiveUsersByRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	s.roles[key] = append([]string(nil), ids...)
	return ids, nil
}

// GetUser returns memoized user
func (s *Snapshot) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if user, ok := s.users[id]; ok {
		return user.Clone(), nil
	}
	user, err := s.directory.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.users[id] = user.Clone()
	return user, nil
}

// NewSnapshot creates a snapshot over directory
func NewSnapshot(directory Directory) *Snapshot {
	return &Snapshot{
		directory: directory,
		users:     map[string]*model.User{},
		roles:     map[string][]string{},
	}
}
