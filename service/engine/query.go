package engine

import (
	"context"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao/criteria"
)

// Get returns a request with its history
func (s *Service) Get(ctx context.Context, requestID string) (*model.Request, error) {
	return s.requests.Load(ctx, requestID)
}

// PendingFor returns IN_PROGRESS requests userID may act on
func (s *Service) PendingFor(ctx context.Context, userID string) ([]*model.Request, error) {
	return s.requests.List(ctx, criteria.ByStatus(model.StatusInProgress), criteria.ByAssignee(userID))
}

// ListByInitiator returns requests created by userID
func (s *Service) ListByInitiator(ctx context.Context, userID string) ([]*model.Request, error) {
	return s.requests.List(ctx, criteria.ByInitiator(userID))
}

// ListPendingAssignment returns requests halted on a step without assignees
func (s *Service) ListPendingAssignment(ctx context.Context) ([]*model.Request, error) {
	return s.requests.List(ctx, criteria.ByStatus(model.StatusPendingAssignment))
}

// History returns the request audit trail ordered by sequence
func (s *Service) History(ctx context.Context, requestID string) ([]*model.Action, error) {
	return s.requests.ListByRequest(ctx, requestID)
}
