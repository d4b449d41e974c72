// Package domain holds the control plane entities and the typed errors
// shared by the store, service, and API layers.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// NotFoundError indicates a referenced entity is absent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenError indicates the principal is not allowed to perform the
// requested action. It names the action, resource type, organization, and
// operation so the caller gets a stable, descriptive denial.
type ForbiddenError struct {
	Action    string
	Resource  string
	OrgID     string
	Operation string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("not allowed to %s on %s under organization %s for %s",
		e.Action, e.Resource, e.OrgID, e.Operation)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ValidationError indicates a mutation was rejected: a name collision, or
// dependent resources blocking a delete. Dependents carries the count of
// blocking resources where relevant.
type ValidationError struct {
	Message    string
	Dependents int
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrConflict }
