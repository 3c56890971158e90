package booking

import (
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// Sentinel kinds.  Every error returned by the engine matches exactly one
// of them through errors.Is, so callers can branch without type switches.
var (
    ErrValidation        = errors.New("validation failed")
    ErrConflict          = errors.New("slot already reserved")
    ErrNotFound          = errors.New("reservation not found")
    ErrInvalidTransition = errors.New("invalid status transition")
    ErrStoreUnavailable  = errors.New("record store unavailable")
)

// ValidationError reports a bad request field.  It is raised before the
// store is touched.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Conflict describes one requested resource-slot that is already held by
// an active record.
type Conflict struct {
    Resource  string       `json:"resource"`
    Slot      string       `json:"slot"`
    Status    model.Status `json:"status"`
    Requester string       `json:"requester"`
    OrderID   string       `json:"order_id"`
}

// ConflictError carries every conflicting pair of a rejected submission.
type ConflictError struct {
    Conflicts []Conflict
}

func (e *ConflictError) Error() string {
    parts := make([]string, 0, len(e.Conflicts))
    for _, c := range e.Conflicts {
        parts = append(parts, fmt.Sprintf("%s %s (%s by %s)", c.Resource, c.Slot, c.Status, c.Requester))
    }
    return "slot already reserved: " + strings.Join(parts, ", ")
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports that no record matched an operation target.
// Resource and Slot are empty for order-level operations.
type NotFoundError struct {
    OrderID  string
    Resource string
    Slot     string
    Want     model.Status
}

func (e *NotFoundError) Error() string {
    target := e.OrderID
    if e.Resource != "" || e.Slot != "" {
        target = fmt.Sprintf("%s/%s/%s", e.OrderID, e.Resource, e.Slot)
    }
    if e.Want != "" {
        return fmt.Sprintf("no %s reservation for %s", e.Want, target)
    }
    return fmt.Sprintf("no reservation for %s", target)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidTransitionError reports an action attempted from a state that does
// not allow it.  The store is never modified when this is returned.
type InvalidTransitionError struct {
    OrderID string
    From    model.Status
    Action  Action
}

func (e *InvalidTransitionError) Error() string {
    return fmt.Sprintf("cannot %s reservation %s in status %s", e.Action, e.OrderID, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// StoreError wraps a failure of the backing record store.  It is retryable
// from the caller's point of view.
type StoreError struct {
    Op  string
    Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
