package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvalflow/model"
)

func TestIsApplicable(t *testing.T) {
	testCases := []struct {
		description string
		condition   *model.Condition
		formData    map[string]interface{}
		expect      bool
	}{
		{description: "no condition", expect: true},
		{description: "greater float", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: 1000}, formData: map[string]interface{}{"amount": 1500.0}, expect: true},
		{description: "greater below", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: 1000}, formData: map[string]interface{}{"amount": 500}, expect: false},
		{description: "greater equal boundary", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: 1000}, formData: map[string]interface{}{"amount": 1000}, expect: false},
		{description: "greater numeric string", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: "1000"}, formData: map[string]interface{}{"amount": " 1500 "}, expect: true},
		{description: "greater missing field", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: 1000}, formData: map[string]interface{}{}, expect: false},
		{description: "greater non numeric", condition: &model.Condition{FieldKey: "amount", Operator: ">", Value: 1000}, formData: map[string]interface{}{"amount": "lots"}, expect: false},
		{description: "less bool", condition: &model.Condition{FieldKey: "flag", Operator: "<", Value: 1}, formData: map[string]interface{}{"flag": false}, expect: false},
		{description: "less", condition: &model.Condition{FieldKey: "days", Operator: "<", Value: 5.5}, formData: map[string]interface{}{"days": int64(3)}, expect: true},
		{description: "loose equal number vs string", condition: &model.Condition{FieldKey: "amount", Operator: "==", Value: "1000"}, formData: map[string]interface{}{"amount": 1000.0}, expect: true},
		{description: "equal text", condition: &model.Condition{FieldKey: "region", Operator: "==", Value: "emea"}, formData: map[string]interface{}{"region": "emea"}, expect: true},
		{description: "equal text case sensitive", condition: &model.Condition{FieldKey: "region", Operator: "==", Value: "emea"}, formData: map[string]interface{}{"region": "EMEA"}, expect: false},
		{description: "equal bool text", condition: &model.Condition{FieldKey: "urgent", Operator: "==", Value: "true"}, formData: map[string]interface{}{"urgent": true}, expect: true},
		{description: "equal missing vs nil", condition: &model.Condition{FieldKey: "note", Operator: "==", Value: nil}, formData: map[string]interface{}{}, expect: true},
		{description: "equal missing vs value", condition: &model.Condition{FieldKey: "note", Operator: "==", Value: ""}, formData: map[string]interface{}{}, expect: false},
		{description: "not equal missing vs value", condition: &model.Condition{FieldKey: "region", Operator: "!=", Value: "emea"}, formData: nil, expect: true},
		{description: "not equal same", condition: &model.Condition{FieldKey: "region", Operator: "!=", Value: "emea"}, formData: map[string]interface{}{"region": "emea"}, expect: false},
		{description: "unknown operator", condition: &model.Condition{FieldKey: "amount", Operator: ">=", Value: 1}, formData: map[string]interface{}{"amount": 5}, expect: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			step := &model.Step{Condition: testCase.condition}
			assert.Equal(t, testCase.expect, IsApplicable(step, testCase.formData))
		})
	}
}
