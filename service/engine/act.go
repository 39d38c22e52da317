package engine

import (
	"context"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/tracing"
)

// Act applies an assignee decision to an IN_PROGRESS request. Every accepted
// call appends exactly one audit action before the state change it explains.
func (s *Service) Act(ctx context.Context, requestID, actorID string, action model.ActionType, comment string) (ret *model.Request, err error) {
	ctx, span := tracing.StartSpan(ctx, "approvalflow.Act")
	span.WithAttributes(map[string]string{"request.id": requestID, "actor.id": actorID, "action": string(action)})
	defer func() { tracing.EndSpan(span, err) }()
	switch action {
	case model.ActionApprove, model.ActionReject, model.ActionReturn:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	t, from, err := s.mutate(ctx, requestID, func(ctx context.Context, t *transition, definition *model.Definition) error {
		return s.act(ctx, t, definition, actorID, action, comment)
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, t, from)
	return t.request.Clone(), nil
}

func (s *Service) act(ctx context.Context, t *transition, definition *model.Definition, actorID string, action model.ActionType, comment string) error {
	req := t.request
	if req.Status != model.StatusInProgress {
		return fmt.Errorf("%w: request %v is %v", ErrInvalidState, req.ID, req.Status)
	}
	if actorID == "" || !req.IsAssignee(actorID) {
		return fmt.Errorf("%w: %v on request %v", ErrNotAssignee, actorID, req.ID)
	}
	idx := req.CurrentStepIndex
	if idx < 0 || idx >= len(definition.Steps) {
		return fmt.Errorf("%w: request %v step %d is out of range of workflow %v/%v", ErrInvalidState, req.ID, idx, definition.ID, definition.Version)
	}
	t.record(action, idx, actorID, comment)
	switch action {
	case model.ActionReject:
		req.Status = model.StatusRejected
		req.CurrentAssignees = []string{}
		t.topics = append(t.topics, model.TopicRequestRejected)
		return nil
	case model.ActionReturn:
		req.Status = model.StatusReturned
		req.CurrentAssignees = []string{req.InitiatorID}
		t.topics = append(t.topics, model.TopicRequestReturned)
		return nil
	}
	approval := req.StepApproval(idx)
	if approval == nil {
		approval = req.EnterStep(idx, req.CurrentAssignees)
	}
	approval.Approve(actorID)
	if !approval.Satisfied(definition.Steps[idx].Mode) {
		t.topics = append(t.topics, model.TopicApprovalRecorded)
		return nil
	}
	return s.advance(ctx, t, definition, idx)
}
