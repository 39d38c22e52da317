// Package assignee resolves the actors empowered to act on a workflow step.
package assignee

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/directory"
)

// Resolver resolves step approvers against a directory
type Resolver struct {
	excludeInitiator bool
}

// Option configures a resolver
type Option func(*Resolver)

// WithExcludeInitiator removes the initiator from every resolved set
func WithExcludeInitiator(flag bool) Option {
	return func(r *Resolver) {
		r.excludeInitiator = flag
	}
}

// Resolve returns the deduplicated assignees of step, in resolution order.
// An empty result is not an error; the caller decides how to halt.
func (r *Resolver) Resolve(ctx context.Context, dir directory.Directory, step *model.Step, initiatorID string) ([]string, error) {
	approver := step.Approver()
	if approver == nil {
		var err error
		if approver, err = model.NewApprover(step.ApproverType, step.RoleIDs, step.UserIDs); err != nil {
			return nil, err
		}
	}
	visitor := &resolution{ctx: ctx, directory: dir, initiatorID: initiatorID}
	approver.Accept(visitor)
	if visitor.err != nil {
		return nil, visitor.err
	}
	ret := make([]string, 0, len(visitor.ids))
	seen := map[string]bool{}
	for _, id := range visitor.ids {
		if id == "" || seen[id] || (r.excludeInitiator && id == initiatorID) {
			continue
		}
		seen[id] = true
		ret = append(ret, id)
	}
	return ret, nil
}

type resolution struct {
	ctx         context.Context
	directory   directory.Directory
	initiatorID string
	ids         []string
	err         error
}

func (r *resolution) VisitRole(approver *model.RoleApprover) {
	r.ids, r.err = r.directory.FindActiveUsersByRoles(r.ctx, approver.RoleIDs)
}

func (r *resolution) VisitUser(approver *model.UserApprover) {
	r.ids = approver.UserIDs
}

func (r *resolution) VisitManager(_ *model.ManagerApprover) {
	initiator, err := r.directory.GetUser(r.ctx, r.initiatorID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return
		}
		r.err = fmt.Errorf("failed to resolve manager of %s: %w", r.initiatorID, err)
		return
	}
	if initiator.ReportingManagerID != "" {
		r.ids = []string{initiator.ReportingManagerID}
	}
}

var _ model.ApproverVisitor = (*resolution)(nil)

// New creates a resolver
func New(opts ...Option) *Resolver {
	ret := &Resolver{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
