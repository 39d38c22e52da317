// Package expr parses the compact condition form "field operator value",
// for example `amount > 1000` or `department == "finance"`.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// Comparison represents a parsed condition
type Comparison struct {
	Field    string
	Operator string
	Value    interface{}
}

// Parse parses a comparison. Numbers yield float64, quoted text a string,
// true/false a bool, null a nil value; any other bare word is kept as text.
func Parse(text string) (*Comparison, error) {
	cursor := parsly.NewCursor("", []byte(strings.TrimSpace(text)), 0)
	ret := &Comparison{}

	matched := cursor.MatchOne(fieldToken)
	if matched.Code != fieldToken.Code {
		return nil, cursor.NewError(fieldToken)
	}
	ret.Field = matched.Text(cursor)

	matched = cursor.MatchAfterOptional(whitespaceToken, operatorToken)
	if matched.Code != operatorToken.Code {
		return nil, cursor.NewError(operatorToken)
	}
	ret.Operator = matched.Text(cursor)

	matched = cursor.MatchAfterOptional(whitespaceToken, numberToken, quotedToken, wordToken)
	switch matched.Code {
	case numberToken.Code:
		value, err := strconv.ParseFloat(matched.Text(cursor), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %w", err)
		}
		ret.Value = value
	case quotedToken.Code:
		quoted := matched.Text(cursor)
		if quoted[0] == '\'' {
			quoted = `"` + strings.ReplaceAll(quoted[1:len(quoted)-1], `"`, `\"`) + `"`
		}
		value, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("invalid string literal %s: %w", matched.Text(cursor), err)
		}
		ret.Value = value
	case wordToken.Code:
		switch word := matched.Text(cursor); word {
		case "true":
			ret.Value = true
		case "false":
			ret.Value = false
		case "null", "nil":
			ret.Value = nil
		default:
			ret.Value = word
		}
	default:
		return nil, cursor.NewError(numberToken, quotedToken, wordToken)
	}

	cursor.MatchOne(whitespaceToken)
	if cursor.Pos < cursor.InputSize {
		return nil, fmt.Errorf("unexpected %q at %d", cursor.Input[cursor.Pos:], cursor.Pos)
	}
	return ret, nil
}
