package publisher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Row statuses tracked in the keywords sheet.
const (
	StatusTodo  = "todo"
	StatusDone  = "done"
	StatusError = "error"
)

// ErrNoPendingKeyword is returned when no row is left in todo status.
var ErrNoPendingKeyword = errors.New("no pending keyword row")

// Sheet is the keywords CSV held in memory: a header plus one string map per
// row, so columns the workflow does not know about survive a rewrite.
type Sheet struct {
	path   string
	header []string
	rows   []map[string]string
}

// LoadSheet reads the keywords CSV from path.
func LoadSheet(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read keywords csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("keywords csv %s is empty", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Sheet{path: path, header: header, rows: rows}, nil
}

// FirstPending returns the index and row of the first keyword still in todo
// status, or ErrNoPendingKeyword.
func (s *Sheet) FirstPending() (int, map[string]string, error) {
	for i, row := range s.rows {
		if strings.ToLower(strings.TrimSpace(row["status"])) == StatusTodo {
			return i, row, nil
		}
	}
	return -1, nil, ErrNoPendingKeyword
}

// Update overwrites row values at idx.
func (s *Sheet) Update(idx int, values map[string]string) {
	for k, v := range values {
		s.rows[idx][k] = v
	}
}

// Save writes the sheet back to its file, preserving the column order.
func (s *Sheet) Save() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create keywords csv: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(s.header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range s.rows {
		record := make([]string, len(s.header))
		for i, col := range s.header {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush keywords csv: %w", err)
	}
	return nil
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.rows)
}
