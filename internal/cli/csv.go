package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/empiria/internal/domain/model"
)

// Import errors.
var (
	ErrEmptyCSV      = errors.New("csv has no header row")
	ErrMissingColumn = errors.New("missing required column")
)

// row is one CSV record keyed by its header cell.
type row map[string]string

// get looks key up ignoring case.
func (r row) get(key string) string {
	if v, ok := r[key]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// readRows reads a header-led CSV. Short records leave the trailing columns
// empty and cells are kept as written.
func readRows(r io.Reader, required ...string) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, want := range required {
		if !hasColumn(header, want) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, want)
		}
	}

	rows := make([]row, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		r := make(row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				r[h] = rec[i]
			} else {
				r[h] = ""
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

func readStudents(r io.Reader) ([]model.StudentRecord, error) {
	rows, err := readRows(r, "id", "name")
	if err != nil {
		return nil, err
	}
	out := make([]model.StudentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.StudentRecord{
			ID:          strings.TrimSpace(r.get("id")),
			Name:        r.get("name"),
			Branch:      r.get("branch"),
			Attendance:  r.get("attendance"),
			InternalAvg: r.get("internal_avg"),
			CertType:    r.get("cert_type"),
			CertSource:  r.get("cert_source"),
		})
	}
	return out, nil
}

func readOutcomes(r io.Reader) ([]model.OutcomeRecord, error) {
	rows, err := readRows(r, "cert_type", "placed")
	if err != nil {
		return nil, err
	}
	out := make([]model.OutcomeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.OutcomeRecord{
			ID:       strings.TrimSpace(r.get("id")),
			CertType: r.get("cert_type"),
			Placed:   r.get("placed"),
			Salary:   r.get("salary"),
			Days:     r.get("days"),
		})
	}
	return out, nil
}

// readSkills keeps every column, since the catalog is served as stored.
func readSkills(r io.Reader) ([]model.SkillDemand, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.SkillDemand, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SkillDemand(r))
	}
	return out, nil
}
