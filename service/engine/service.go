// Package engine advances approval requests through their pinned workflow
// definition: it creates requests, applies actor decisions and recovers
// requests halted on steps nobody can act on.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/viant/approvalflow/internal/clock"
	"github.com/viant/approvalflow/internal/idgen"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/assignee"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/request"
	"github.com/viant/approvalflow/service/directory"
	"github.com/viant/approvalflow/service/form"
	"github.com/viant/approvalflow/service/lock"
	"github.com/viant/approvalflow/service/lock/memory"
	"github.com/viant/approvalflow/service/messaging"
	"go.uber.org/zap"
)

// Definitions provides pinned workflow definitions
type Definitions interface {
	// Load returns the exact version or an error wrapping dao.ErrNotFound
	Load(ctx context.Context, id string, version int) (*model.Definition, error)
	// Versions returns all registered versions in ascending order, or an error
	// wrapping dao.ErrNotFound
	Versions(ctx context.Context, id string) ([]*model.Definition, error)
}

// Service is the workflow advancement engine
type Service struct {
	requests      request.Store
	definitions   Definitions
	directory     directory.Directory
	resolver      *assignee.Resolver
	locker        lock.Locker
	forms         *form.Validator
	validateForm  bool
	publisher     messaging.Publisher[model.Event]
	metrics       *Metrics
	logger        *zap.Logger
	maxRetries    int
	retryInterval time.Duration
}

// transition collects the audit actions explaining one state change
type transition struct {
	request *model.Request
	actions []*model.Action
	now     time.Time
	topics  []string
}

func newTransition(req *model.Request) *transition {
	now := clock.Now()
	req.UpdatedAt = now
	return &transition{request: req, now: now}
}

// record appends an audit action; it must precede the mutation it explains
func (t *transition) record(actionType model.ActionType, stepIndex int, byUserID, comment string) *model.Action {
	action := &model.Action{
		ID:        idgen.New(),
		RequestID: t.request.ID,
		Seq:       t.request.NextSeq(),
		StepIndex: stepIndex,
		Type:      actionType,
		ByUserID:  byUserID,
		Comment:   comment,
		Timestamp: t.now,
	}
	t.request.History = append(t.request.History, action)
	t.actions = append(t.actions, action)
	return action
}

// mutate loads the request and its pinned definition under the request lock,
// applies fn and saves the result, re-applying fn on revision conflicts
func (s *Service) mutate(ctx context.Context, requestID string, fn func(ctx context.Context, t *transition, definition *model.Definition) error) (*transition, model.Status, error) {
	if requestID == "" {
		return nil, "", dao.ErrInvalidID
	}
	unlock, err := s.locker.Lock(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval
	policy.MaxInterval = 20 * s.retryInterval
	policy.MaxElapsedTime = 0
	var committed *transition
	var from model.Status
	err = backoff.Retry(func() error {
		req, err := s.requests.Load(ctx, requestID)
		if err != nil {
			return backoff.Permanent(err)
		}
		definition, err := s.definitions.Load(ctx, req.WorkflowID, req.WorkflowVersion)
		if err != nil {
			return backoff.Permanent(err)
		}
		from = req.Status
		t := newTransition(req)
		if err = fn(ctx, t, definition); err != nil {
			return backoff.Permanent(err)
		}
		if err = s.requests.Save(ctx, req, t.actions...); err != nil {
			if errors.Is(err, dao.ErrConflict) {
				s.metrics.conflict()
				s.logger.Debug("request revision conflict", zap.String("request_id", requestID), zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		committed = t
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxRetries)), ctx))
	if err != nil {
		return nil, "", err
	}
	return committed, from, nil
}

// committed reports a saved transition to logs, metrics and subscribers
func (s *Service) committed(ctx context.Context, t *transition, from model.Status) {
	req := t.request
	s.metrics.observe(req, t.actions)
	fields := []zap.Field{
		zap.String("request_id", req.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
		zap.Int("step", req.CurrentStepIndex),
	}
	if req.Status == model.StatusPendingAssignment {
		s.logger.Warn("request halted without assignees", fields...)
	} else {
		s.logger.Info("request transitioned", fields...)
	}
	if s.publisher == nil {
		return
	}
	for _, topic := range t.topics {
		event := &model.Event{
			Topic:     topic,
			RequestID: req.ID,
			Status:    req.Status,
			StepIndex: req.CurrentStepIndex,
			Assignees: append([]string{}, req.CurrentAssignees...),
			CreatedAt: t.now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish event", zap.String("topic", topic), zap.String("request_id", req.ID), zap.Error(err))
		}
	}
}

// New creates an engine over the request store, definition registry and directory
func New(requests request.Store, definitions Definitions, dir directory.Directory, opts ...Option) *Service {
	ret := &Service{
		requests:      requests,
		definitions:   definitions,
		directory:     dir,
		resolver:      assignee.New(),
		locker:        memory.New(),
		forms:         form.New(),
		validateForm:  true,
		logger:        zap.NewNop(),
		maxRetries:    3,
		retryInterval: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
