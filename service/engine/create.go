package engine

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/internal/idgen"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/criteria"
	"github.com/viant/approvalflow/tracing"
)

// CreateRequest creates a request pinned to the latest active workflow version
// and advances it to the first applicable step
func (s *Service) CreateRequest(ctx context.Context, workflowID string, formData map[string]interface{}, initiatorID string) (ret *model.Request, err error) {
	ctx, span := tracing.StartSpan(ctx, "approvalflow.CreateRequest")
	span.WithAttributes(map[string]string{"workflow.id": workflowID, "initiator.id": initiatorID})
	defer func() { tracing.EndSpan(span, err) }()
	definition, err := s.latestActive(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, definition, formData, initiatorID, "")
}

func (s *Service) latestActive(ctx context.Context, workflowID string) (*model.Definition, error) {
	versions, err := s.definitions.Versions(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].IsActive() {
			return versions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInactiveWorkflow, workflowID)
}

// CreateRequestVersion creates a request pinned to an explicit workflow version
func (s *Service) CreateRequestVersion(ctx context.Context, workflowID string, version int, formData map[string]interface{}, initiatorID string) (ret *model.Request, err error) {
	ctx, span := tracing.StartSpan(ctx, "approvalflow.CreateRequest")
	span.WithAttributes(map[string]string{"workflow.id": workflowID, "initiator.id": initiatorID})
	defer func() { tracing.EndSpan(span, err) }()
	definition, err := s.definitions.Load(ctx, workflowID, version)
	if err != nil {
		return nil, err
	}
	if !definition.IsActive() {
		return nil, fmt.Errorf("%w: %v/%v", ErrInactiveWorkflow, workflowID, version)
	}
	return s.create(ctx, definition, formData, initiatorID, "")
}

// Resubmit creates a new request from a RETURNED one on the same pinned
// workflow version; nil formData reuses the returned request form data.
// A returned request can be resubmitted once.
func (s *Service) Resubmit(ctx context.Context, requestID, initiatorID string, formData map[string]interface{}) (ret *model.Request, err error) {
	ctx, span := tracing.StartSpan(ctx, "approvalflow.Resubmit")
	span.WithAttributes(map[string]string{"request.id": requestID, "initiator.id": initiatorID})
	defer func() { tracing.EndSpan(span, err) }()
	if requestID == "" {
		return nil, dao.ErrInvalidID
	}
	unlock, err := s.locker.Lock(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	previous, err := s.requests.Load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if previous.Status != model.StatusReturned {
		return nil, fmt.Errorf("%w: request %v is %v", ErrInvalidState, requestID, previous.Status)
	}
	if previous.InitiatorID != initiatorID {
		return nil, fmt.Errorf("%w: %v did not initiate request %v", ErrNotAssignee, initiatorID, requestID)
	}
	successors, err := s.requests.List(ctx, criteria.ByPrevious(requestID))
	if err != nil {
		return nil, err
	}
	if len(successors) > 0 {
		return nil, fmt.Errorf("%w: request %v was resubmitted as %v", ErrInvalidState, requestID, successors[0].ID)
	}
	if formData == nil {
		formData = previous.Clone().FormData
	}
	definition, err := s.definitions.Load(ctx, previous.WorkflowID, previous.WorkflowVersion)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, definition, formData, initiatorID, previous.ID)
}

func (s *Service) create(ctx context.Context, definition *model.Definition, formData map[string]interface{}, initiatorID, previousID string) (*model.Request, error) {
	if initiatorID == "" {
		return nil, fmt.Errorf("%w: initiator is required", ErrValidation)
	}
	if formData == nil {
		formData = map[string]interface{}{}
	}
	if s.validateForm {
		if err := s.forms.Validate(definition, formData); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
		}
	}
	req := &model.Request{
		ID:                idgen.New(),
		WorkflowID:        definition.ID,
		WorkflowVersion:   definition.Version,
		InitiatorID:       initiatorID,
		FormData:          formData,
		Status:            model.StatusInProgress,
		CurrentStepIndex:  -1,
		CurrentAssignees:  []string{},
		PreviousRequestID: previousID,
	}
	t := newTransition(req)
	req.CreatedAt = t.now
	comment := "request initiated"
	if previousID != "" {
		comment = "request resubmitted from " + previousID
	}
	t.record(model.ActionSubmit, -1, initiatorID, comment)
	t.topics = append(t.topics, model.TopicRequestCreated)
	if err := s.advance(ctx, t, definition, -1); err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, req, t.actions...); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.committed(ctx, t, "")
	return req.Clone(), nil
}
