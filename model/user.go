package model

// User represents a directory entry as seen by the engine
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	// Active nil means active
	Active  *bool    `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	RoleIDs []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	// LegacyRole is the single role string carried by older records; it is
	// folded into RoleIDs by Normalize and never read by the engine.
	LegacyRole         string `json:"role,omitempty" yaml:"role,omitempty"`
	ReportingManagerID string `json:"reportingManagerId,omitempty" yaml:"reportingManagerId,omitempty"`
}

// IsActive returns true if the user may be assigned work
func (u *User) IsActive() bool {
	return u.Active == nil || *u.Active
}

// Normalize folds the legacy role into RoleIDs
func (u *User) Normalize() {
	if u.LegacyRole != "" {
		u.RoleIDs = append(u.RoleIDs, u.LegacyRole)
		u.LegacyRole = ""
	}
	u.RoleIDs = compact(u.RoleIDs)
}

// HasAnyRole returns true if the user holds any of roleIDs
func (u *User) HasAnyRole(roleIDs []string) bool {
	for _, held := range u.RoleIDs {
		for _, candidate := range roleIDs {
			if held == candidate {
				return true
			}
		}
	}
	return false
}

// Clone returns a copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	ret := *u
	if u.Active != nil {
		active := *u.Active
		ret.Active = &active
	}
	ret.RoleIDs = append([]string(nil), u.RoleIDs...)
	return &ret
}
