package model

import (
    "encoding/json"
    "fmt"
    "strings"
    "time"
)

// Status is the lifecycle state of a single reservation row.
type Status string

const (
    StatusPending   Status = "PENDING"
    StatusApproved  Status = "APPROVED"
    StatusRejected  Status = "REJECTED"
    StatusReturned  Status = "RETURNED"
    StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a persisted token back into a Status.  Unknown
// tokens are rejected so that a corrupted row never enters the engine.
func ParseStatus(s string) (Status, error) {
    switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
    case StatusPending, StatusApproved, StatusRejected, StatusReturned, StatusCancelled:
        return st, nil
    }
    return "", fmt.Errorf("unknown reservation status %q", s)
}

// Active reports whether the status still occupies its resource-slot.
func (s Status) Active() bool {
    return s == StatusPending || s == StatusApproved
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
    return s == StatusRejected || s == StatusReturned || s == StatusCancelled
}

// DateLayout is the persisted calendar date format (ISO-8601).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
    return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateKey renders the calendar date part of t.  Two records refer to the
// same day iff their DateKey values are equal.
func DateKey(t time.Time) string {
    return t.Format(DateLayout)
}

// ReservationRecord is one booked (resource, date, slot) row.  A single
// submission produces one record per (resource, slot) pair, all sharing
// the same OrderID.
//
// Fields:
//  OrderID       – opaque id shared by every row of one submission.
//  RequesterName – person who asked for the equipment.
//  Department    – requester's department.
//  Resource      – catalog resource identifier.
//  Date          – calendar date (midnight UTC).
//  Slot          – catalog slot identifier, e.g. 09:00-10:00.
//  Purpose       – free-text reason for borrowing.
//  Status        – lifecycle state.
//  SubmittedAt   – creation timestamp.
//  ProcessedAt   – last transition timestamp, nil while untouched.
type ReservationRecord struct {
    OrderID       string     `json:"order_id"`
    RequesterName string     `json:"requester_name"`
    Department    string     `json:"department"`
    Resource      string     `json:"resource"`
    Date          time.Time  `json:"-"`
    Slot          string     `json:"slot"`
    Purpose       string     `json:"purpose"`
    Status        Status     `json:"status"`
    SubmittedAt   time.Time  `json:"submitted_at"`
    ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// DateString returns the record date in the persisted layout.
func (r ReservationRecord) DateString() string { return DateKey(r.Date) }

// MarshalJSON renders Date as a calendar date instead of a timestamp.
func (r ReservationRecord) MarshalJSON() ([]byte, error) {
    type plain ReservationRecord
    return json.Marshal(struct {
        plain
        Date string `json:"date"`
    }{plain(r), r.DateString()})
}

// Occupies reports whether r is an active booking of the given resource-slot.
func (r ReservationRecord) Occupies(resource string, date time.Time, slot string) bool {
    return r.Status.Active() && r.Resource == resource && r.Slot == slot && DateKey(r.Date) == DateKey(date)
}

// RowUpdate addresses one stored row by (order_id, resource, slot) and
// carries its new status.  An order always covers a single date, so the
// triple identifies the row uniquely.
type RowUpdate struct {
    OrderID     string
    Resource    string
    Slot        string
    Status      Status
    ProcessedAt time.Time
}

// Columns is the stable persisted column order.
var Columns = []string{
    "order_id", "requester_name", "department", "resource", "date",
    "slot", "purpose", "status", "submitted_at", "processed_at",
}
