// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEventsQueue is the durable queue that carries lifecycle events.
const ReservationEventsQueue = "reservation.events"

// Event types, one per lifecycle operation.
const (
    EventCreated   = "reservation.created"
    EventApproved  = "reservation.approved"
    EventRejected  = "reservation.rejected"
    EventReturned  = "reservation.returned"
    EventCancelled = "reservation.cancelled"
)

// EventRow is one affected (resource, slot) row and the status it reached.
type EventRow struct {
    Resource string `json:"resource"`
    Slot     string `json:"slot"`
    Status   string `json:"status"`
}

// ReservationEvent is published after a lifecycle operation has been
// committed to the record store.  It carries enough information for audit
// logging without reading the store again.
type ReservationEvent struct {
    Type          string     `json:"type"`
    OrderID       string     `json:"order_id"`
    RequesterName string     `json:"requester_name"`
    Department    string     `json:"department"`
    Date          string     `json:"date"`
    Rows          []EventRow `json:"rows"`
    OccurredAt    string     `json:"occurred_at"`
}
