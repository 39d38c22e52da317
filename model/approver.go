package model

import "fmt"

// ApproverType represents the wire discriminator of a step approver
type ApproverType string

const (
	ApproverRole    ApproverType = "ROLE"
	ApproverUser    ApproverType = "USER"
	ApproverManager ApproverType = "MANAGER_OF_INITIATOR"
)

// Approver is a sealed sum type describing who may act on a step.
// Implementations are RoleApprover, UserApprover and ManagerApprover.
type Approver interface {
	Type() ApproverType
	// Accept dispatches to the visitor method matching the variant
	Accept(visitor ApproverVisitor)
	sealed()
}

// ApproverVisitor must handle every approver variant; adding a variant adds a
// method here, so every resolver fails to compile until it handles it.
type ApproverVisitor interface {
	VisitRole(approver *RoleApprover)
	VisitUser(approver *UserApprover)
	VisitManager(approver *ManagerApprover)
}

// RoleApprover broadcasts a step to every active member of any listed role
type RoleApprover struct {
	RoleIDs []string
}

func (a *RoleApprover) Type() ApproverType              { return ApproverRole }
func (a *RoleApprover) Accept(visitor ApproverVisitor) { visitor.VisitRole(a) }
func (a *RoleApprover) sealed()                        {}

// UserApprover assigns a step to an explicit set of users
type UserApprover struct {
	UserIDs []string
}

func (a *UserApprover) Type() ApproverType              { return ApproverUser }
func (a *UserApprover) Accept(visitor ApproverVisitor) { visitor.VisitUser(a) }
func (a *UserApprover) sealed()                        {}

// ManagerApprover assigns a step to the initiator's reporting manager
type ManagerApprover struct{}

func (a *ManagerApprover) Type() ApproverType              { return ApproverManager }
func (a *ManagerApprover) Accept(visitor ApproverVisitor) { visitor.VisitManager(a) }
func (a *ManagerApprover) sealed()                        {}

// NewApprover builds an approver from wire fields
func NewApprover(approverType ApproverType, roleIDs, userIDs []string) (Approver, error) {
	switch approverType {
	case ApproverRole:
		ids := compact(roleIDs)
		if len(ids) == 0 {
			return nil, fmt.Errorf("approver type %s requires at least one role", approverType)
		}
		return &RoleApprover{RoleIDs: ids}, nil
	case ApproverUser:
		ids := compact(userIDs)
		if len(ids) == 0 {
			return nil, fmt.Errorf("approver type %s requires at least one user", approverType)
		}
		return &UserApprover{UserIDs: ids}, nil
	case ApproverManager:
		return &ManagerApprover{}, nil
	}
	return nil, fmt.Errorf("unsupported approver type %q", approverType)
}

// compact removes empty and duplicated ids, keeping the first occurrence order
func compact(ids []string) []string {
	ret := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ret = append(ret, id)
	}
	return ret
}
