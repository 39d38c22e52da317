// Package memory provides an in-process request store.
package memory

import (
	"context"
	"sort"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/audit"
	"github.com/viant/approvalflow/service/dao/criteria"
	"github.com/viant/approvalflow/service/dao/request"
	"github.com/viant/approvalflow/service/dao/store"
)

// Service implements an in-memory request storage. All operations are
// thread-safe and return copies of the stored requests.
type Service struct {
	requests dao.Service[string, model.Request]
}

var _ request.Store = (*Service)(nil)

// Create stores a new request
func (s *Service) Create(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	candidate := req.Clone()
	candidate.Revision = 1
	candidate.History = request.Merge(candidate.History, actions)
	if err := s.requests.Insert(ctx, candidate); err != nil {
		return err
	}
	req.Revision = candidate.Revision
	req.History = request.Merge(req.History, actions)
	return nil
}

// Save stores the request when its revision is current
func (s *Service) Save(ctx context.Context, req *model.Request, actions ...*model.Action) error {
	if err := request.Validate(req, actions); err != nil {
		return err
	}
	err := s.requests.Update(ctx, req.ID, func(current *model.Request) (*model.Request, error) {
		if current.Revision != req.Revision {
			return nil, dao.ErrConflict
		}
		candidate := req.Clone()
		candidate.Revision++
		candidate.History = request.Merge(current.History, actions)
		return candidate, nil
	})
	if err != nil {
		return err
	}
	req.Revision++
	req.History = request.Merge(req.History, actions)
	return nil
}

// Load returns a request copy
func (s *Service) Load(ctx context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	return s.requests.Load(ctx, id)
}

// List returns requests matching parameters
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Request, error) {
	requests, err := s.requests.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

// Append adds an audit action to an existing request
func (s *Service) Append(ctx context.Context, action *model.Action) error {
	if err := audit.Validate(action); err != nil {
		return err
	}
	return s.requests.Update(ctx, action.RequestID, func(current *model.Request) (*model.Request, error) {
		current.History = request.Merge(current.History, []*model.Action{action})
		return current, nil
	})
}

// ListByRequest returns request audit actions
func (s *Service) ListByRequest(ctx context.Context, requestID string) ([]*model.Action, error) {
	req, err := s.Load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	history := req.History
	sort.SliceStable(history, func(i, j int) bool { return history[i].Seq < history[j].Seq })
	return history, nil
}

// New creates a memory request store
func New() *Service {
	return &Service{
		requests: store.NewMemoryStore[string, model.Request](
			func(r *model.Request) string { return r.ID },
			store.WithCloner[string]((*model.Request).Clone),
			store.WithMatcher[string](func(r *model.Request, parameters []*dao.Parameter) bool {
				return criteria.Match(r, parameters)
			}),
		),
	}
}
