// Package form validates submitted form data against a workflow form schema.
package form

import (
	"fmt"
	"strings"
	"sync"

	"github.com/viant/approvalflow/model"
	"github.com/xeipuuv/gojsonschema"
)

// Error lists form data issues
type Error struct {
	Issues []string
}

func (e *Error) Error() string {
	return "invalid form data: " + strings.Join(e.Issues, "; ")
}

// Schema returns the JSON schema describing fields
func Schema(fields []*model.FormField) map[string]interface{} {
	properties := map[string]interface{}{}
	required := []interface{}{}
	for _, field := range fields {
		property := map[string]interface{}{}
		switch field.Type {
		case model.FieldNumber:
			property["type"] = "number"
		case model.FieldSelect:
			options := make([]interface{}, len(field.Options))
			for i, option := range field.Options {
				options[i] = option
			}
			property["enum"] = options
		case model.FieldDate:
			property["type"] = "string"
			property["format"] = "date"
		default:
			property["type"] = "string"
			if field.Required {
				property["minLength"] = 1
			}
		}
		if field.Label != "" {
			property["title"] = field.Label
		}
		properties[field.Key] = property
		if field.Required {
			required = append(required, field.Key)
		}
	}
	ret := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		ret["required"] = required
	}
	return ret
}

// Validator validates form data, caching compiled schemas per definition version
type Validator struct {
	mux     sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

// Validate returns *Error when formData does not satisfy the definition form schema
func (v *Validator) Validate(definition *model.Definition, formData map[string]interface{}) error {
	if len(definition.FormSchema) == 0 {
		return nil
	}
	schema, err := v.schema(definition)
	if err != nil {
		return err
	}
	if formData == nil {
		formData = map[string]interface{}{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(formData))
	if err != nil {
		return &Error{Issues: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	ret := &Error{}
	for _, issue := range result.Errors() {
		ret.Issues = append(ret.Issues, issue.String())
	}
	return ret
}

func (v *Validator) schema(definition *model.Definition) (*gojsonschema.Schema, error) {
	key := definition.Key()
	v.mux.RLock()
	schema, ok := v.schemas[key]
	v.mux.RUnlock()
	if ok {
		return schema, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(Schema(definition.FormSchema)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile form schema of %s: %w", key, err)
	}
	v.mux.Lock()
	v.schemas[key] = schema
	v.mux.Unlock()
	return schema, nil
}

// New creates a validator
func New() *Validator {
	return &Validator{schemas: map[string]*gojsonschema.Schema{}}
}
