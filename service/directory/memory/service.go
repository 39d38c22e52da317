// Package memory provides an in-process directory, optionally loaded from a
// YAML document.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/afs"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/store"
	"github.com/viant/approvalflow/service/directory"
	"gopkg.in/yaml.v3"
)

// Service is a directory backed by a memory store
type Service struct {
	users dao.Service[string, model.User]
	fs    afs.Service
}

var _ directory.Directory = (*Service)(nil)

// Put adds or replaces users; legacy role strings are folded into role ids
func (s *Service) Put(ctx context.Context, users ...*model.User) error {
	for _, user := range users {
		if user == nil {
			return dao.ErrNilEntity
		}
		if user.ID == "" {
			return dao.ErrInvalidID
		}
		normalized := user.Clone()
		normalized.Normalize()
		if err := s.users.Save(ctx, normalized); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a user
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// FindActiveUsersByRoles returns sorted ids of active users holding any of roleIDs
func (s *Service) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	ret := []string{}
	for _, user := range users {
		if user.IsActive() && user.HasAnyRole(roleIDs) {
			ret = append(ret, user.ID)
		}
	}
	sort.Strings(ret)
	return ret, nil
}

// GetUser returns a user
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return user, nil
}

// Load reads a YAML sequence of users from URL
func (s *Service) Load(ctx context.Context, URL string) error {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to download directory %s: %w", URL, err)
	}
	var users []*model.User
	if err := yaml.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to decode directory %s: %w", URL, err)
	}
	return s.Put(ctx, users...)
}

// New creates an empty directory
func New(users ...*model.User) (*Service, error) {
	ret := &Service{
		users: store.NewMemoryStore[string, model.User](
			func(u *model.User) string { return u.ID },
			store.WithCloner[string]((*model.User).Clone),
		),
		fs: afs.New(),
	}
	return ret, ret.Put(context.Background(), users...)
}

// WithFS sets the storage service used by Load
func (s *Service) WithFS(fs afs.Service) *Service {
	s.fs = fs
	return s
}
