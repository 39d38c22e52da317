package model

import (
	"encoding/json"
	"fmt"

	"github.com/viant/approvalflow/model/expr"
	"gopkg.in/yaml.v3"
)

// Operator represents a condition comparison operator
type Operator string

const (
	OpGreater  Operator = ">"
	OpLess     Operator = "<"
	OpEqual    Operator = "=="
	OpNotEqual Operator = "!="
)

// Condition decides whether a step applies to the submitted form data.
// In YAML and JSON it can be written either as a mapping or in the compact
// form "amount > 1000".
type Condition struct {
	FieldKey string      `json:"fieldKey" yaml:"fieldKey"`
	Operator Operator    `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value" yaml:"value"`
}

type conditionFields Condition

// Validate checks condition structure
func (c *Condition) Validate() error {
	if c.FieldKey == "" {
		return fmt.Errorf("condition field key was empty")
	}
	switch c.Operator {
	case OpGreater, OpLess, OpEqual, OpNotEqual:
		return nil
	}
	return fmt.Errorf("unsupported condition operator %q", c.Operator)
}

// String returns the compact condition form
func (c *Condition) String() string {
	if value, ok := c.Value.(string); ok {
		return fmt.Sprintf("%s %s %q", c.FieldKey, c.Operator, value)
	}
	return fmt.Sprintf("%s %s %v", c.FieldKey, c.Operator, c.Value)
}

// UnmarshalYAML decodes either mapping or compact form
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return c.parse(node.Value)
	}
	var fields conditionFields
	if err := node.Decode(&fields); err != nil {
		return err
	}
	*c = Condition(fields)
	return nil
}

// UnmarshalJSON decodes either object or compact string form
func (c *Condition) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return c.parse(text)
	}
	var fields conditionFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Condition(fields)
	return nil
}

func (c *Condition) parse(text string) error {
	comparison, err := expr.Parse(text)
	if err != nil {
		return fmt.Errorf("invalid condition %q: %w", text, err)
	}
	c.FieldKey = comparison.Field
	c.Operator = Operator(comparison.Operator)
	c.Value = comparison.Value
	return nil
}
