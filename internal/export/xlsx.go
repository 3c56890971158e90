// Package export renders reservation records as an Excel workbook for the
// admin download endpoint.
package export

import (
    "bytes"
    "fmt"
    "sort"

    "github.com/xuri/excelize/v2"

    "github.com/iliyamo/gear-reservation/internal/model"
    "github.com/iliyamo/gear-reservation/internal/repository"
)

const (
    RecordsSheet = "Reservations"
    UsageSheet   = "Usage"
)

var columnWidths = []float64{12, 18, 18, 14, 12, 14, 30, 12, 22, 22}

// XLSX builds a workbook with one row per record on RecordsSheet, using
// the persisted column layout, and a per-resource record count on
// UsageSheet.
func XLSX(records []model.ReservationRecord, usage map[string]int) ([]byte, error) {
    f := excelize.NewFile()
    defer f.Close()

    if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
        return nil, fmt.Errorf("rename default sheet: %w", err)
    }

    headerStyle, err := f.NewStyle(&excelize.Style{
        Font: &excelize.Font{Bold: true},
        Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
        Border: []excelize.Border{
            {Type: "left", Color: "000000", Style: 1},
            {Type: "top", Color: "000000", Style: 1},
            {Type: "bottom", Color: "000000", Style: 1},
            {Type: "right", Color: "000000", Style: 1},
        },
        Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
    })
    if err != nil {
        return nil, fmt.Errorf("create header style: %w", err)
    }

    if err := writeRow(f, RecordsSheet, 1, toAny(model.Columns)); err != nil {
        return nil, err
    }
    if err := styleHeader(f, RecordsSheet, len(model.Columns), headerStyle); err != nil {
        return nil, err
    }
    for i, r := range records {
        if err := writeRow(f, RecordsSheet, i+2, toAny(repository.RecordToRow(r))); err != nil {
            return nil, err
        }
    }
    for i, w := range columnWidths {
        col, _ := excelize.ColumnNumberToName(i + 1)
        if err := f.SetColWidth(RecordsSheet, col, col, w); err != nil {
            return nil, fmt.Errorf("set width %s: %w", col, err)
        }
    }
    if err := f.SetPanes(RecordsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
        return nil, fmt.Errorf("freeze header: %w", err)
    }

    if _, err := f.NewSheet(UsageSheet); err != nil {
        return nil, fmt.Errorf("create sheet: %w", err)
    }
    if err := writeRow(f, UsageSheet, 1, []interface{}{"resource", "records"}); err != nil {
        return nil, err
    }
    if err := styleHeader(f, UsageSheet, 2, headerStyle); err != nil {
        return nil, err
    }
    resources := make([]string, 0, len(usage))
    for r := range usage {
        resources = append(resources, r)
    }
    sort.Strings(resources)
    for i, r := range resources {
        if err := writeRow(f, UsageSheet, i+2, []interface{}{r, usage[r]}); err != nil {
            return nil, err
        }
    }

    var buf bytes.Buffer
    if err := f.Write(&buf); err != nil {
        return nil, fmt.Errorf("write workbook: %w", err)
    }
    return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
    cell, err := excelize.CoordinatesToCellName(1, row)
    if err != nil {
        return err
    }
    if err := f.SetSheetRow(sheet, cell, &values); err != nil {
        return fmt.Errorf("write %s row %d: %w", sheet, row, err)
    }
    return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
    last, err := excelize.CoordinatesToCellName(cols, 1)
    if err != nil {
        return err
    }
    return f.SetCellStyle(sheet, "A1", last, style)
}

func toAny(in []string) []interface{} {
    out := make([]interface{}, len(in))
    for i, v := range in {
        out[i] = v
    }
    return out
}
