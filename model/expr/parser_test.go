package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      *Comparison
		expectErr   bool
	}{
		{
			description: "number greater",
			input:       "amount > 1000",
			expect:      &Comparison{Field: "amount", Operator: ">", Value: 1000.0},
		},
		{
			description: "compact without spaces",
			input:       "amount<12.5",
			expect:      &Comparison{Field: "amount", Operator: "<", Value: 12.5},
		},
		{
			description: "negative number",
			input:       "delta == -3",
			expect:      &Comparison{Field: "delta", Operator: "==", Value: -3.0},
		},
		{
			description: "double quoted text",
			input:       `department != "human resources"`,
			expect:      &Comparison{Field: "department", Operator: "!=", Value: "human resources"},
		},
		{
			description: "single quoted text",
			input:       `department == 'finance'`,
			expect:      &Comparison{Field: "department", Operator: "==", Value: "finance"},
		},
		{
			description: "bool literal",
			input:       "urgent == true",
			expect:      &Comparison{Field: "urgent", Operator: "==", Value: true},
		},
		{
			description: "null literal",
			input:       "manager == null",
			expect:      &Comparison{Field: "manager", Operator: "==", Value: nil},
		},
		{
			description: "bare word",
			input:       "  region == emea  ",
			expect:      &Comparison{Field: "region", Operator: "==", Value: "emea"},
		},
		{
			description: "dotted field",
			input:       "cost.total > 5",
			expect:      &Comparison{Field: "cost.total", Operator: ">", Value: 5.0},
		},
		{description: "missing operator", input: "amount 1000", expectErr: true},
		{description: "unsupported operator", input: "amount >= 1000", expectErr: true},
		{description: "missing value", input: "amount >", expectErr: true},
		{description: "trailing input", input: "amount > 10 20", expectErr: true},
		{description: "empty", input: "", expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Parse(testCase.input)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.EqualValues(t, testCase.expect, actual)
		})
	}
}
