// Package biometric reads attendance device exports (CSV, XLSX, XLS) into
// normalised punch rows.
package biometric

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported biometric log format")
	ErrEmptyLog          = errors.New("biometric log has no rows")
	ErrMissingColumns    = errors.New("biometric log header is missing required columns")
)

// Row is one device line with the date as YYYY-MM-DD and times as HH:MM:SS.
// A blank time stays empty.
type Row struct {
	Line        int
	Name        string
	BiometricID string
	Date        string
	TimeIn      string
	TimeOut     string
}

// RowError reports a line that could not be normalised.
type RowError struct {
	Line    int
	Message string
}

type Result struct {
	Rows   []Row
	Errors []RowError
}

// Parser is header driven: columns may come in any order.
type Parser struct {
	// DayFirst reads ambiguous dates like 04/03/2024 as 4 March.
	DayFirst bool
	// MaxRows bounds the number of rows read from a legacy .xls workbook.
	MaxRows int
}

func NewParser(dayFirst bool) *Parser {
	return &Parser{DayFirst: dayFirst, MaxRows: 100000}
}

var columnAliases = map[string][]string{
	"name":         {"name", "employee name", "emp name", "full name"},
	"biometric_id": {"id", "biometric id", "biometric_id", "emp id", "employee id", "user id", "enroll no", "ac-no."},
	"date":         {"date", "punch date", "attendance date"},
	"time_in":      {"time in", "time_in", "in", "in time", "check in", "clock in", "punch in"},
	"time_out":     {"time out", "time_out", "out", "out time", "check out", "clock out", "punch out"},
}

// Supported reports whether the file extension is one the parser reads.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

func (p *Parser) Parse(r io.Reader, filename string) (Result, error) {
	rows, err := p.readRows(r, filename)
	if err != nil {
		return Result{}, err
	}
	if len(rows) < 2 {
		return Result{}, ErrEmptyLog
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, raw := range rows[1:] {
		line := i + 2
		if blankRow(raw) {
			continue
		}
		row, err := p.normaliseRow(raw, cols)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		row.Line = line
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func (p *Parser) readRows(reader io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		cr := csv.NewReader(reader)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrEmptyLog
		}
		return workbook.ReadAllCells(p.MaxRows), nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrEmptyLog
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read xlsx rows: %w", err)
		}
		return rows, nil
	}
	return nil, ErrUnsupportedFormat
}

func mapHeader(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for idx, h := range header {
		h = normalizeHeader(h)
		for field, aliases := range columnAliases {
			if _, seen := cols[field]; seen {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					cols[field] = idx
				}
			}
		}
	}

	var missing []string
	for _, field := range []string{"biometric_id", "date", "time_in", "time_out"} {
		if _, ok := cols[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (p *Parser) normaliseRow(raw []string, cols map[string]int) (Row, error) {
	row := Row{
		BiometricID: cellValue(raw, cols["biometric_id"]),
	}
	if idx, ok := cols["name"]; ok {
		row.Name = cellValue(raw, idx)
	}
	if row.BiometricID == "" {
		return Row{}, errors.New("biometric id is empty")
	}
	// Spreadsheet exports turn numeric ids into floats.
	if f, err := strconv.ParseFloat(row.BiometricID, 64); err == nil && f == math.Trunc(f) {
		row.BiometricID = strconv.FormatInt(int64(f), 10)
	}

	date, ok := p.normalizeDate(cellValue(raw, cols["date"]))
	if !ok {
		return Row{}, fmt.Errorf("unrecognised date %q", cellValue(raw, cols["date"]))
	}
	row.Date = date

	if row.TimeIn, ok = normalizeClock(cellValue(raw, cols["time_in"])); !ok {
		return Row{}, fmt.Errorf("unrecognised time in %q", cellValue(raw, cols["time_in"]))
	}
	if row.TimeOut, ok = normalizeClock(cellValue(raw, cols["time_out"])); !ok {
		return Row{}, fmt.Errorf("unrecognised time out %q", cellValue(raw, cols["time_out"]))
	}
	if row.TimeIn == "" && row.TimeOut == "" {
		return Row{}, errors.New("row has neither time in nor time out")
	}
	return row, nil
}

func (p *Parser) normalizeDate(value string) (string, bool) {
	if value == "" {
		return "", false
	}

	// Excel numeric date serial
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}

	layouts := []string{"2006-01-02", "2006/01/02", "2 Jan 2006", "02-Jan-2006", "Jan 2, 2006", "2006-01-02 15:04:05"}
	if p.DayFirst {
		layouts = append(layouts, "2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "02.01.2006")
	} else {
		layouts = append(layouts, "1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1/2/06")
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

// normalizeClock accepts HH:MM, HH:MM:SS, 12-hour clocks and Excel day
// fractions. An empty, dash or zero cell is a missing punch, not an error.
func normalizeClock(value string) (string, bool) {
	switch value {
	case "", "-", "--", "00:00", "00:00:00":
		return "", true
	}

	if frac, err := strconv.ParseFloat(value, 64); err == nil {
		if frac <= 0 || frac >= 1 {
			return "", false
		}
		secs := int(math.Round(frac * 86400))
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60), true
	}

	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, strings.ToUpper(value)); err == nil {
			return parsed.Format("15:04:05"), true
		}
	}
	return "", false
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
