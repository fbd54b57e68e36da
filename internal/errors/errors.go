package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a bad field value on create/update
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ReferentialIntegrityError represents a delete blocked by a live reference
type ReferentialIntegrityError struct {
	Entity  string
	ID      uint
	Message string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %d cannot be deleted: %s", e.Entity, e.ID, e.Message)
}

// HasChildrenError represents a component delete blocked by its subtree
// when the caller did not request a cascading delete
type HasChildrenError struct {
	ID uint
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("component %d has children; request a cascading delete to remove the subtree", e.ID)
}

// CycleError represents a parent chain that revisits a component
type CycleError struct {
	ID uint
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("component %d is part of a parent cycle", e.ID)
}

// DanglingReferenceError represents a parent_id/material_id pointing at a
// record that does not exist in the project
type DanglingReferenceError struct {
	ID    uint
	Field string
	Ref   uint
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("component %d: %s references missing record %d", e.ID, e.Field, e.Ref)
}

// DuplicateNameError represents a project name collision (case-sensitive)
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("project with name %q already exists", e.Name)
}

// ProtectedResourceError represents an attempt to delete the bootstrap project
type ProtectedResourceError struct {
	Message string
}

func (e *ProtectedResourceError) Error() string {
	return e.Message
}

// ImportError represents a malformed or irresolvable CSV row-set; the whole
// import is rolled back when one is raised
type ImportError struct {
	Line    int
	Message string
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import failed at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("import failed: %s", e.Message)
}

// Entity Not Found Errors
var (
	ErrProjectNotFound   = &NotFoundError{Entity: "project"}
	ErrMaterialNotFound  = &NotFoundError{Entity: "material"}
	ErrComponentNotFound = &NotFoundError{Entity: "component"}
)

// Registry Errors
var (
	ErrBootstrapProjectProtected = &ProtectedResourceError{Message: "the default project cannot be deleted"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsReferentialIntegrity checks if an error is a ReferentialIntegrityError
func IsReferentialIntegrity(err error) bool {
	var refErr *ReferentialIntegrityError
	return errors.As(err, &refErr)
}

// IsHasChildren checks if an error is a HasChildrenError
func IsHasChildren(err error) bool {
	var childErr *HasChildrenError
	return errors.As(err, &childErr)
}

// IsCycle checks if an error is a CycleError
func IsCycle(err error) bool {
	var cycleErr *CycleError
	return errors.As(err, &cycleErr)
}

// IsDanglingReference checks if an error is a DanglingReferenceError
func IsDanglingReference(err error) bool {
	var danglingErr *DanglingReferenceError
	return errors.As(err, &danglingErr)
}

// IsDuplicateName checks if an error is a DuplicateNameError
func IsDuplicateName(err error) bool {
	var dupErr *DuplicateNameError
	return errors.As(err, &dupErr)
}

// IsProtectedResource checks if an error is a ProtectedResourceError
func IsProtectedResource(err error) bool {
	var protErr *ProtectedResourceError
	return errors.As(err, &protErr)
}

// IsImport checks if an error is an ImportError
func IsImport(err error) bool {
	var importErr *ImportError
	return errors.As(err, &importErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity and id
func NewNotFoundError(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewImportError creates a new ImportError for a specific CSV line
func NewImportError(line int, format string, args ...interface{}) error {
	return &ImportError{Line: line, Message: fmt.Sprintf(format, args...)}
}
