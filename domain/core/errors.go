package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// Workflow errors: the operation is valid but the session is not far
	// enough along to serve it
	ErrNoTable   = errors.New("no table loaded")
	ErrNoMapping = errors.New("no column mapping available")
)
