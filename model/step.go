package model

import "fmt"

// Mode represents a step quorum mode
type Mode string

const (
	// ModeAnyOne completes a step on the first approval
	ModeAnyOne Mode = "ANY_ONE"
	// ModeAllRequired completes a step once every captured assignee approved
	ModeAllRequired Mode = "ALL_REQUIRED"
)

// Step represents a single approval stage
type Step struct {
	StepOrder    int          `json:"stepOrder" yaml:"stepOrder"`
	StageName    string       `json:"stageName,omitempty" yaml:"stageName,omitempty"`
	ApproverType ApproverType `json:"approverType" yaml:"approverType"`
	RoleIDs      []string     `json:"roleIds,omitempty" yaml:"roleIds,omitempty"`
	UserIDs      []string     `json:"userIds,omitempty" yaml:"userIds,omitempty"`
	Mode         Mode         `json:"mode,omitempty" yaml:"mode,omitempty"`
	// SLAHours is carried for compatibility; no engine logic consumes it.
	SLAHours  int        `json:"slaHours,omitempty" yaml:"slaHours,omitempty"`
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`

	approver Approver
}

// Approver returns the normalised approver, or nil if the step was not initialised
func (s *Step) Approver() Approver {
	return s.approver
}

// Init builds the step approver from its wire fields
func (s *Step) Init() error {
	if s.Mode == "" {
		s.Mode = ModeAnyOne
	}
	approver, err := NewApprover(s.ApproverType, s.RoleIDs, s.UserIDs)
	if err != nil {
		return err
	}
	s.approver = approver
	return nil
}

// Validate returns step configuration issues
func (s *Step) Validate() []error {
	var issues []error
	switch s.Mode {
	case ModeAnyOne, ModeAllRequired:
	default:
		issues = append(issues, fmt.Errorf("unsupported mode %q", s.Mode))
	}
	if _, err := NewApprover(s.ApproverType, s.RoleIDs, s.UserIDs); err != nil {
		issues = append(issues, err)
	}
	if s.Condition != nil {
		if err := s.Condition.Validate(); err != nil {
			issues = append(issues, err)
		}
	}
	return issues
}

// Clone returns a deep copy of the step
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	ret := *s
	ret.RoleIDs = append([]string(nil), s.RoleIDs...)
	ret.UserIDs = append([]string(nil), s.UserIDs...)
	if s.Condition != nil {
		condition := *s.Condition
		ret.Condition = &condition
	}
	if s.approver != nil {
		ret.approver, _ = NewApprover(s.ApproverType, ret.RoleIDs, ret.UserIDs)
	}
	return &ret
}

// WithRoles configures a ROLE approver
func (s *Step) WithRoles(roleIDs ...string) *Step {
	s.ApproverType = ApproverRole
	s.RoleIDs = roleIDs
	s.UserIDs = nil
	return s
}

// WithUsers configures a USER approver
func (s *Step) WithUsers(userIDs ...string) *Step {
	s.ApproverType = ApproverUser
	s.UserIDs = userIDs
	s.RoleIDs = nil
	return s
}

// WithManager configures a MANAGER_OF_INITIATOR approver
func (s *Step) WithManager() *Step {
	s.ApproverType = ApproverManager
	s.RoleIDs = nil
	s.UserIDs = nil
	return s
}

// WithMode sets quorum mode
func (s *Step) WithMode(mode Mode) *Step {
	s.Mode = mode
	return s
}

// WithCondition sets applicability condition
func (s *Step) WithCondition(fieldKey string, operator Operator, value interface{}) *Step {
	s.Condition = &Condition{FieldKey: fieldKey, Operator: operator, Value: value}
	return s
}
