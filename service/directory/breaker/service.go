// Package breaker guards a directory with a circuit breaker so that a failing
// backend fails advancements fast instead of piling up lookups.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/directory"
)

// Service trips after consecutive directory failures; not found lookups count as success
type Service struct {
	directory directory.Directory
	breaker   *gobreaker.CircuitBreaker
}

var _ directory.Directory = (*Service)(nil)

// FindActiveUsersByRoles returns role members or gobreaker.ErrOpenState while open
func (s *Service) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	value, err := s.breaker.Execute(func() (interface{}, error) {
		return s.directory.FindActiveUsersByRoles(ctx, roleIDs)
	})
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

// GetUser returns a user or gobreaker.ErrOpenState while open
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	value, err := s.breaker.Execute(func() (interface{}, error) {
		return s.directory.GetUser(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return value.(*model.User), nil
}

// State returns the breaker state
func (s *Service) State() gobreaker.State {
	return s.breaker.State()
}

// New wraps directory; the breaker opens after failures consecutive errors
// and half-opens after timeout
func New(dir directory.Directory, failures uint32, timeout time.Duration) *Service {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "directory",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, dao.ErrNotFound)
		},
	}
	return &Service{directory: dir, breaker: gobreaker.NewCircuitBreaker(settings)}
}
