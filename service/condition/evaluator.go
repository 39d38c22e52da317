// Package condition decides whether a workflow step applies to submitted form
// data. Evaluation never fails: values that cannot be compared make ordering
// comparisons false.
package condition

import (
	"strings"

	"github.com/viant/approvalflow/model"
	"github.com/viant/toolbox"
)

// IsApplicable returns true if step has no condition or its condition holds
func IsApplicable(step *model.Step, formData map[string]interface{}) bool {
	if step == nil || step.Condition == nil {
		return true
	}
	return Evaluate(step.Condition, formData)
}

// Evaluate evaluates condition against form data
func Evaluate(condition *model.Condition, formData map[string]interface{}) bool {
	actual, present := formData[condition.FieldKey]
	switch condition.Operator {
	case model.OpGreater, model.OpLess:
		if !present {
			return false
		}
		left, ok := asNumber(actual)
		if !ok {
			return false
		}
		right, ok := asNumber(condition.Value)
		if !ok {
			return false
		}
		if condition.Operator == model.OpGreater {
			return left > right
		}
		return left < right
	case model.OpEqual:
		return equals(actual, present, condition.Value)
	case model.OpNotEqual:
		return !equals(actual, present, condition.Value)
	}
	return false
}

// equals implements loose equality: numbers compare numerically, anything else
// by its text form; a missing field equals only nil
func equals(actual interface{}, present bool, expected interface{}) bool {
	if !present || actual == nil || expected == nil {
		return (!present || actual == nil) && expected == nil
	}
	left, leftOK := asNumber(actual)
	right, rightOK := asNumber(expected)
	if leftOK && rightOK {
		return left == right
	}
	return toolbox.AsString(actual) == toolbox.AsString(expected)
}

func asNumber(value interface{}) (float64, bool) {
	switch actual := value.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(actual) == "" {
			return 0, false
		}
		value = strings.TrimSpace(actual)
	}
	result, err := toolbox.ToFloat(value)
	if err != nil {
		return 0, false
	}
	return result, true
}
