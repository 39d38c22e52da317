package model

import (
	"fmt"
	"time"
)

// FieldType represents a form field type
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldFile     FieldType = "file"
	FieldTextarea FieldType = "textarea"
)

// FormField describes a single input captured at submission time
type FormField struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Definition represents a versioned approval workflow template. Once
// registered a definition is never mutated; edits produce a new version.
type Definition struct {
	// ID is the stable workflow identifier shared by all versions
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable workflow name
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Version is monotonic per ID
	Version int `json:"version" yaml:"version"`
	// Active controls whether new requests may be created; nil means active
	Active     *bool        `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	FormSchema []*FormField `json:"formSchema,omitempty" yaml:"formSchema,omitempty"`
	Steps      []*Step      `json:"steps" yaml:"steps"`
	CreatedBy  string       `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	CreatedAt  time.Time    `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// IsActive returns true if new requests may be created from this definition
func (d *Definition) IsActive() bool {
	return d.Active == nil || *d.Active
}

// Key returns the registry key of the definition
func (d *Definition) Key() string {
	return VersionKey(d.ID, d.Version)
}

// VersionKey returns a registry key for the supplied id and version
func VersionKey(id string, version int) string {
	return fmt.Sprintf("%s@%d", id, version)
}

// Init normalises wire fields: it assigns step orders and builds each step's
// approver. It is idempotent.
func (d *Definition) Init() error {
	if d.Version == 0 {
		d.Version = 1
	}
	for i, step := range d.Steps {
		if step == nil {
			return fmt.Errorf("workflow %s: step %d is nil", d.ID, i+1)
		}
		if step.StepOrder == 0 {
			step.StepOrder = i + 1
		}
		if err := step.Init(); err != nil {
			return fmt.Errorf("workflow %s: step %d: %w", d.ID, i+1, err)
		}
	}
	return nil
}

// Validate performs a structural validation of the definition.  The returned
// slice is empty when the definition is sound.
func (d *Definition) Validate() []error {
	var issues []error
	if d.ID == "" {
		issues = append(issues, fmt.Errorf("workflow id was empty"))
	}
	if d.Version < 1 {
		issues = append(issues, fmt.Errorf("workflow %s: invalid version %d", d.ID, d.Version))
	}
	keys := map[string]bool{}
	for _, field := range d.FormSchema {
		if field.Key == "" {
			issues = append(issues, fmt.Errorf("workflow %s: form field without key", d.ID))
			continue
		}
		if keys[field.Key] {
			issues = append(issues, fmt.Errorf("workflow %s: duplicate form field %s", d.ID, field.Key))
		}
		keys[field.Key] = true
		switch field.Type {
		case FieldText, FieldNumber, FieldDate, FieldSelect, FieldFile, FieldTextarea:
		default:
			issues = append(issues, fmt.Errorf("workflow %s: form field %s has unsupported type %q", d.ID, field.Key, field.Type))
		}
		if field.Type == FieldSelect && len(field.Options) == 0 {
			issues = append(issues, fmt.Errorf("workflow %s: select field %s has no options", d.ID, field.Key))
		}
	}
	for i, step := range d.Steps {
		if step == nil {
			issues = append(issues, fmt.Errorf("workflow %s: step %d is nil", d.ID, i+1))
			continue
		}
		if step.StepOrder != i+1 {
			issues = append(issues, fmt.Errorf("workflow %s: step %q has order %d at position %d", d.ID, step.StageName, step.StepOrder, i+1))
		}
		for _, err := range step.Validate() {
			issues = append(issues, fmt.Errorf("workflow %s: step %d: %w", d.ID, i+1, err))
		}
	}
	return issues
}

// Clone returns a deep copy of the definition
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	ret := *d
	if d.Active != nil {
		active := *d.Active
		ret.Active = &active
	}
	ret.FormSchema = make([]*FormField, len(d.FormSchema))
	for i, field := range d.FormSchema {
		clone := *field
		clone.Options = append([]string(nil), field.Options...)
		ret.FormSchema[i] = &clone
	}
	ret.Steps = make([]*Step, len(d.Steps))
	for i, step := range d.Steps {
		ret.Steps[i] = step.Clone()
	}
	return &ret
}

// NewDefinition creates a new definition with version 1
func NewDefinition(id, name string) *Definition {
	return &Definition{ID: id, Name: name, Version: 1}
}

// WithField adds a form field
func (d *Definition) WithField(key string, fieldType FieldType, required bool, options ...string) *Definition {
	d.FormSchema = append(d.FormSchema, &FormField{Key: key, Label: key, Type: fieldType, Required: required, Options: options})
	return d
}

// NewStep appends a new step to the definition
func (d *Definition) NewStep(stageName string) *Step {
	step := &Step{StepOrder: len(d.Steps) + 1, StageName: stageName, Mode: ModeAnyOne}
	d.Steps = append(d.Steps, step)
	return step
}
