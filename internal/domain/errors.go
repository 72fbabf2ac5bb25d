package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyFinalized indicates an attempted mutation of a terminal item.
	ErrAlreadyFinalized = errors.New("already finalized")

	// ErrDuplicateReview indicates the reviewer already holds a recorded
	// decision on the item.
	ErrDuplicateReview = errors.New("duplicate review")

	// ErrInvalidTransition indicates a status change not permitted from the
	// current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidAction indicates an action outside approve/edit/skip.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInsufficientBalance indicates a payout request exceeding the
	// reviewer's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AlreadyExistsError provides details about a duplicate entity.
type AlreadyExistsError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// AlreadyFinalizedError indicates a submission against a terminal item.
type AlreadyFinalizedError struct {
	ItemID string
}

// Error implements the error interface.
func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("item already finalized: %s", e.ItemID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AlreadyFinalizedError) Unwrap() error {
	return ErrAlreadyFinalized
}

// DuplicateReviewError indicates the reviewer already submitted a decision
// on the item. This is idempotency protection, not a bug signal.
type DuplicateReviewError struct {
	ItemID     string
	ReviewerID string
}

// Error implements the error interface.
func (e *DuplicateReviewError) Error() string {
	return fmt.Sprintf("reviewer %s already reviewed item %s", e.ReviewerID, e.ItemID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *DuplicateReviewError) Unwrap() error {
	return ErrDuplicateReview
}

// InvalidTransitionError carries the rejected (current, requested) pair.
type InvalidTransitionError struct {
	From ItemStatus
	To   ItemStatus
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid item status transition %s -> %s", e.From, e.To)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidActionError carries the rejected action string.
type InvalidActionError struct {
	Action string
}

// Error implements the error interface.
func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid review action: %q", e.Action)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidActionError) Unwrap() error {
	return ErrInvalidAction
}

// InsufficientBalanceError provides details about a rejected payout request.
type InsufficientBalanceError struct {
	ReviewerID string
	Available  float64
	Requested  float64
}

// Error implements the error interface.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for reviewer %s: available %.4f, requested %.4f",
		e.ReviewerID, e.Available, e.Requested)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(entity, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, ID: id}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewAlreadyFinalizedError creates a new AlreadyFinalizedError.
func NewAlreadyFinalizedError(itemID string) *AlreadyFinalizedError {
	return &AlreadyFinalizedError{ItemID: itemID}
}

// NewDuplicateReviewError creates a new DuplicateReviewError.
func NewDuplicateReviewError(itemID, reviewerID string) *DuplicateReviewError {
	return &DuplicateReviewError{ItemID: itemID, ReviewerID: reviewerID}
}

// NewInvalidTransitionError creates a new InvalidTransitionError.
func NewInvalidTransitionError(from, to ItemStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// NewInvalidActionError creates a new InvalidActionError.
func NewInvalidActionError(action string) *InvalidActionError {
	return &InvalidActionError{Action: action}
}
