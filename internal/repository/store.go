package repository

import (
    "context"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// RecordStore is the narrow persistence contract of the reservation engine.
// Every call is atomic: either all rows of the call are applied or none
// are, and a subsequent LoadAll never observes a partial write.  Records
// are returned in insertion order.
type RecordStore interface {
    LoadAll(ctx context.Context) ([]model.ReservationRecord, error)
    AppendRows(ctx context.Context, rows []model.ReservationRecord) error
    UpdateRows(ctx context.Context, updates []model.RowUpdate) error
}

// applyUpdates returns a copy of records with updates applied.  It fails
// with ErrRowNotFound, leaving records untouched, when an update addresses
// a row that is not present.
func applyUpdates(records []model.ReservationRecord, updates []model.RowUpdate) ([]model.ReservationRecord, error) {
    out := cloneRecords(records)
    for _, u := range updates {
        idx := -1
        for i := range out {
            if out[i].OrderID == u.OrderID && out[i].Resource == u.Resource && out[i].Slot == u.Slot {
                idx = i
                break
            }
        }
        if idx < 0 {
            return nil, ErrRowNotFound
        }
        at := u.ProcessedAt
        out[idx].Status = u.Status
        out[idx].ProcessedAt = &at
    }
    return out, nil
}

func cloneRecords(records []model.ReservationRecord) []model.ReservationRecord {
    out := make([]model.ReservationRecord, len(records))
    for i, r := range records {
        if r.ProcessedAt != nil {
            at := *r.ProcessedAt
            r.ProcessedAt = &at
        }
        out[i] = r
    }
    return out
}
