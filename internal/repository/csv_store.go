package repository

import (
    "context"
    "encoding/csv"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "sync"
    "time"

    "github.com/iliyamo/gear-reservation/internal/model"
)

// CSVStore persists records in a single CSV file using the stable column
// layout of model.Columns.  Every write rewrites the whole file into a
// temporary sibling and renames it over the original, so readers see either
// the old or the new content and never a torn file.
type CSVStore struct {
    mu   sync.Mutex
    path string
}

// NewCSVStore opens path, creating it with a header row when it does not
// exist yet.
func NewCSVStore(path string) (*CSVStore, error) {
    if path == "" {
        path = "reservation_records.csv"
    }
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, fmt.Errorf("create dirs: %w", err)
        }
    }
    s := &CSVStore{path: path}
    if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
        if err := s.writeAll(nil); err != nil {
            return nil, err
        }
    } else if err != nil {
        return nil, fmt.Errorf("stat %s: %w", path, err)
    }
    return s, nil
}

func (s *CSVStore) LoadAll(ctx context.Context) ([]model.ReservationRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.readAll()
}

func (s *CSVStore) AppendRows(ctx context.Context, rows []model.ReservationRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    records, err := s.readAll()
    if err != nil {
        return err
    }
    return s.writeAll(append(records, rows...))
}

func (s *CSVStore) UpdateRows(ctx context.Context, updates []model.RowUpdate) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    records, err := s.readAll()
    if err != nil {
        return err
    }
    next, err := applyUpdates(records, updates)
    if err != nil {
        return err
    }
    return s.writeAll(next)
}

func (s *CSVStore) readAll() ([]model.ReservationRecord, error) {
    f, err := os.Open(s.path)
    if err != nil {
        return nil, fmt.Errorf("open %s: %w", s.path, err)
    }
    defer f.Close()
    r := csv.NewReader(f)
    r.FieldsPerRecord = len(model.Columns)
    if _, err := r.Read(); err != nil {
        if errors.Is(err, io.EOF) {
            return []model.ReservationRecord{}, nil
        }
        return nil, fmt.Errorf("read header: %w", err)
    }
    out := []model.ReservationRecord{}
    for line := 2; ; line++ {
        row, err := r.Read()
        if errors.Is(err, io.EOF) {
            break
        }
        if err != nil {
            return nil, fmt.Errorf("read line %d: %w", line, err)
        }
        rec, err := RowToRecord(row)
        if err != nil {
            return nil, fmt.Errorf("line %d: %w", line, err)
        }
        out = append(out, rec)
    }
    return out, nil
}

func (s *CSVStore) writeAll(records []model.ReservationRecord) (retErr error) {
    tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
    if err != nil {
        return fmt.Errorf("create temp file: %w", err)
    }
    defer func() {
        if retErr != nil {
            _ = tmp.Close()
            _ = os.Remove(tmp.Name())
        }
    }()
    if err := WriteCSV(tmp, records); err != nil {
        return err
    }
    if err := tmp.Sync(); err != nil {
        return fmt.Errorf("sync temp file: %w", err)
    }
    if err := tmp.Close(); err != nil {
        return fmt.Errorf("close temp file: %w", err)
    }
    if err := os.Rename(tmp.Name(), s.path); err != nil {
        return fmt.Errorf("replace %s: %w", s.path, err)
    }
    return nil
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []model.ReservationRecord) error {
    cw := csv.NewWriter(w)
    if err := cw.Write(model.Columns); err != nil {
        return fmt.Errorf("write header: %w", err)
    }
    for _, r := range records {
        if err := cw.Write(RecordToRow(r)); err != nil {
            return fmt.Errorf("write row %s: %w", r.OrderID, err)
        }
    }
    cw.Flush()
    return cw.Error()
}

// RecordToRow renders r in the persisted column order.
func RecordToRow(r model.ReservationRecord) []string {
    processed := ""
    if r.ProcessedAt != nil {
        processed = r.ProcessedAt.UTC().Format(time.RFC3339)
    }
    return []string{
        r.OrderID,
        r.RequesterName,
        r.Department,
        r.Resource,
        r.DateString(),
        r.Slot,
        r.Purpose,
        string(r.Status),
        r.SubmittedAt.UTC().Format(time.RFC3339),
        processed,
    }
}

// RowToRecord parses a row produced by RecordToRow.
func RowToRecord(row []string) (model.ReservationRecord, error) {
    if len(row) != len(model.Columns) {
        return model.ReservationRecord{}, fmt.Errorf("expected %d columns, got %d", len(model.Columns), len(row))
    }
    date, err := model.ParseDate(row[4])
    if err != nil {
        return model.ReservationRecord{}, fmt.Errorf("date: %w", err)
    }
    status, err := model.ParseStatus(row[7])
    if err != nil {
        return model.ReservationRecord{}, err
    }
    submitted, err := time.Parse(time.RFC3339, row[8])
    if err != nil {
        return model.ReservationRecord{}, fmt.Errorf("submitted_at: %w", err)
    }
    rec := model.ReservationRecord{
        OrderID:       row[0],
        RequesterName: row[1],
        Department:    row[2],
        Resource:      row[3],
        Date:          date,
        Slot:          row[5],
        Purpose:       row[6],
        Status:        status,
        SubmittedAt:   submitted.UTC(),
    }
    if row[9] != "" {
        processed, err := time.Parse(time.RFC3339, row[9])
        if err != nil {
            return model.ReservationRecord{}, fmt.Errorf("processed_at: %w", err)
        }
        processed = processed.UTC()
        rec.ProcessedAt = &processed
    }
    return rec, nil
}
