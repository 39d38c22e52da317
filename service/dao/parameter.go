package dao

// Parameter represents a named List filter
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter; a single value is kept as string, more
// values as []string
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Values returns parameter value as a string slice
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}
