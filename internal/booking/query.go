package booking

import (
    "strings"
    "time"

    "github.com/iliyamo/gear-reservation/internal/catalog"
    "github.com/iliyamo/gear-reservation/internal/model"
)

// Occupant is the public view of the record holding a slot.
type Occupant struct {
    OrderID       string       `json:"order_id"`
    RequesterName string       `json:"requester_name"`
    Department    string       `json:"department"`
    Status        model.Status `json:"status"`
}

// SlotState is one row of the daily board.  Occupant is nil when the slot
// is free.
type SlotState struct {
    Slot     string    `json:"slot"`
    Free     bool      `json:"free"`
    Occupant *Occupant `json:"occupant,omitempty"`
}

// DailyAvailability builds the slot-by-slot board of resource on date.
func DailyAvailability(resource string, date time.Time, snapshot []model.ReservationRecord) []SlotState {
    grid := catalog.Slots(date)
    out := make([]SlotState, 0, len(grid))
    for _, slot := range grid {
        st := SlotState{Slot: slot, Free: true}
        if r, ok := occupant(resource, date, slot, snapshot); ok {
            st.Free = false
            st.Occupant = &Occupant{
                OrderID:       r.OrderID,
                RequesterName: r.RequesterName,
                Department:    r.Department,
                Status:        r.Status,
            }
        }
        out = append(out, st)
    }
    return out
}

// Search matches text case-insensitively against requester name or
// department.  A blank query matches nothing.
func Search(text string, snapshot []model.ReservationRecord) []model.ReservationRecord {
    q := strings.ToLower(strings.TrimSpace(text))
    out := []model.ReservationRecord{}
    if q == "" {
        return out
    }
    for _, r := range snapshot {
        if strings.Contains(strings.ToLower(r.RequesterName), q) || strings.Contains(strings.ToLower(r.Department), q) {
            out = append(out, r)
        }
    }
    return out
}

// PendingQueue lists PENDING records in creation order.
func PendingQueue(snapshot []model.ReservationRecord) []model.ReservationRecord {
    out := []model.ReservationRecord{}
    for _, r := range snapshot {
        if r.Status == model.StatusPending {
            out = append(out, r)
        }
    }
    return out
}

// UsageStatistics counts records per resource across all statuses.
func UsageStatistics(snapshot []model.ReservationRecord) map[string]int {
    out := make(map[string]int)
    for _, r := range snapshot {
        out[r.Resource]++
    }
    return out
}
