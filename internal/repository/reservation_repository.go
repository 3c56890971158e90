package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ReservationRepo is the MySQL-backed RecordStore.  Rows live in the
// reservation_records table; the auto-increment id preserves insertion
// order and the active_slot unique key (see database.Migrate) refuses a
// second PENDING/APPROVED row on one resource-slot.  All timestamp fields
// are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so callers can run health checks.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// LoadAll returns every record ordered by insertion.
func (r *ReservationRepo) LoadAll(ctx context.Context) ([]model.ReservationRecord, error) {
    const q = `SELECT order_id, requester_name, department, resource, date, slot, purpose,
                      status, submitted_at, processed_at
               FROM reservation_records
               ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ReservationRecord, 0)
    for rows.Next() {
        var rec model.ReservationRecord
        var status string
        var processed sql.NullTime
        if err := rows.Scan(
            &rec.OrderID, &rec.RequesterName, &rec.Department, &rec.Resource, &rec.Date,
            &rec.Slot, &rec.Purpose, &status, &rec.SubmittedAt, &processed,
        ); err != nil {
            return nil, err
        }
        if rec.Status, err = model.ParseStatus(status); err != nil {
            return nil, err
        }
        rec.Date = rec.Date.UTC()
        rec.SubmittedAt = rec.SubmittedAt.UTC()
        if processed.Valid {
            at := processed.Time.UTC()
            rec.ProcessedAt = &at
        }
        out = append(out, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// AppendRows inserts all rows in a single statement inside a transaction.
// A duplicate active slot is reported as ErrConflict.  Passing an empty
// slice has no effect and returns nil.
func (r *ReservationRepo) AppendRows(ctx context.Context, recs []model.ReservationRecord) error {
    if len(recs) == 0 {
        return nil
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := r.appendRowsTx(ctx, tx, recs); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func (r *ReservationRepo) appendRowsTx(ctx context.Context, tx *sql.Tx, recs []model.ReservationRecord) error {
    var sb strings.Builder
    sb.WriteString(`INSERT INTO reservation_records (order_id, requester_name, department, resource, date, slot, purpose, status, submitted_at, processed_at) VALUES `)
    args := make([]interface{}, 0, len(recs)*10)
    for i, rec := range recs {
        if i > 0 {
            sb.WriteString(",")
        }
        sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
        var processed interface{}
        if rec.ProcessedAt != nil {
            processed = rec.ProcessedAt.UTC()
        }
        args = append(args,
            rec.OrderID, rec.RequesterName, rec.Department, rec.Resource, rec.DateString(),
            rec.Slot, rec.Purpose, string(rec.Status), rec.SubmittedAt.UTC(), processed,
        )
    }
    if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
        if isDuplicateEntry(err) {
            return ErrConflict
        }
        return err
    }
    return nil
}

// UpdateRows applies every status change inside one transaction.  When
// any addressed row is missing the transaction is rolled back and
// ErrRowNotFound is returned.
func (r *ReservationRepo) UpdateRows(ctx context.Context, updates []model.RowUpdate) error {
    if len(updates) == 0 {
        return nil
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    const q = `UPDATE reservation_records SET status = ?, processed_at = ?
               WHERE order_id = ? AND resource = ? AND slot = ?`
    for _, u := range updates {
        res, err := tx.ExecContext(ctx, q, string(u.Status), u.ProcessedAt.UTC(), u.OrderID, u.Resource, u.Slot)
        if err != nil {
            if isDuplicateEntry(err) {
                return ErrConflict
            }
            return err
        }
        n, err := res.RowsAffected()
        if err != nil {
            return err
        }
        if n == 0 {
            return ErrRowNotFound
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// PingContext verifies the connection with a short timeout.
func (r *ReservationRepo) PingContext(ctx context.Context) error {
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    return r.db.PingContext(ctx)
}

func isDuplicateEntry(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
