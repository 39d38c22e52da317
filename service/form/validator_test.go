package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/model"
)

func TestValidator_Validate(t *testing.T) {
	definition := model.NewDefinition("expense", "Expense").
		WithField("amount", model.FieldNumber, true).
		WithField("category", model.FieldSelect, true, "travel", "meals").
		WithField("reason", model.FieldTextarea, false).
		WithField("date", model.FieldDate, false)

	testCases := []struct {
		description string
		formData    map[string]interface{}
		issues      int
	}{
		{description: "valid", formData: map[string]interface{}{"amount": 1500, "category": "travel", "date": "2024-03-01", "extra": true}},
		{description: "missing required", formData: map[string]interface{}{"category": "meals"}, issues: 1},
		{description: "nil form", issues: 2},
		{description: "amount not a number", formData: map[string]interface{}{"amount": "lots", "category": "meals"}, issues: 1},
		{description: "unknown option", formData: map[string]interface{}{"amount": 10, "category": "gifts"}, issues: 1},
		{description: "bad date", formData: map[string]interface{}{"amount": 10, "category": "meals", "date": "yesterday"}, issues: 1},
	}
	validator := New()
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := validator.Validate(definition, testCase.formData)
			if testCase.issues == 0 {
				assert.NoError(t, err)
				return
			}
			formErr := &Error{}
			require.True(t, errors.As(err, &formErr))
			assert.Len(t, formErr.Issues, testCase.issues, formErr.Error())
		})
	}

	assert.NoError(t, validator.Validate(model.NewDefinition("open", "Open"), nil))
}
