package booking

import (
    "time"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// SlotKey is one requested (resource, slot) pair of a submission.
type SlotKey struct {
    Resource string `json:"resource"`
    Slot     string `json:"slot"`
}

// occupant returns the active record holding resource/date/slot, if any.
func occupant(resource string, date time.Time, slot string, snapshot []model.ReservationRecord) (model.ReservationRecord, bool) {
    for _, r := range snapshot {
        if r.Occupies(resource, date, slot) {
            return r, true
        }
    }
    return model.ReservationRecord{}, false
}

// HasConflict reports whether snapshot already holds a PENDING or APPROVED
// record for the resource-slot on date.
func HasConflict(resource string, date time.Time, slot string, snapshot []model.ReservationRecord) bool {
    _, ok := occupant(resource, date, slot, snapshot)
    return ok
}

// FindConflicts checks every candidate and returns all that are taken, in
// candidate order.  A nil result means the whole set is free.
func FindConflicts(candidates []SlotKey, date time.Time, snapshot []model.ReservationRecord) []Conflict {
    var out []Conflict
    for _, c := range candidates {
        r, ok := occupant(c.Resource, date, c.Slot, snapshot)
        if !ok {
            continue
        }
        out = append(out, Conflict{
            Resource:  c.Resource,
            Slot:      c.Slot,
            Status:    r.Status,
            Requester: r.RequesterName,
            OrderID:   r.OrderID,
        })
    }
    return out
}
