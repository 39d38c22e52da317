package engine

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every error rejecting a call before any mutation
var ErrValidation = errors.New("validation failed")

var (
	// ErrInvalidAction indicates an unsupported action or recovery
	ErrInvalidAction = fmt.Errorf("%w: invalid action", ErrValidation)
	// ErrNotAssignee indicates that the actor may not act on the request
	ErrNotAssignee = fmt.Errorf("%w: actor is not an assignee", ErrValidation)
	// ErrInvalidState indicates that the request status does not allow the call
	ErrInvalidState = fmt.Errorf("%w: invalid request state", ErrValidation)
	// ErrInvalidForm indicates that form data does not match the form schema
	ErrInvalidForm = fmt.Errorf("%w: invalid form data", ErrValidation)
	// ErrInactiveWorkflow indicates that the workflow does not accept new requests
	ErrInactiveWorkflow = fmt.Errorf("%w: workflow is inactive", ErrValidation)
)
