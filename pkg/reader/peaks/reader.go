// Package peaks provides a streaming reader for MSn peak tables stored as CSV
package peaks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/recma/pkg/core"
)

// Column names recognized in the header row
const (
	ColumnLevel     = "level"
	ColumnMZ        = "mz"
	ColumnIntensity = "intensity"
	ColumnID        = "id"
	ColumnParentID  = "parent_id"
	ColumnPrecursor = "precursor_mz"
)

// Reader provides streaming access to peak tables with the header
// level,mz,intensity[,id,parent_id,precursor_mz]. Columns may appear in any order and
// unknown columns are ignored.
type Reader struct {
	csv         *csv.Reader
	columns     map[string]int
	lineNum     int
	currentPeak *core.Peak
	err         error
}

// NewReader creates a new peak table reader
func NewReader(r io.Reader) *Reader {
	c := csv.NewReader(r)
	c.Comment = '#'
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = -1

	return &Reader{csv: c}
}

// Next advances to the next peak. Returns false when no more peaks or error.
func (r *Reader) Next() bool {
	r.currentPeak = nil
	if r.err != nil {
		return false
	}

	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			if err != io.EOF {
				r.err = err
			}
			return false
		}
	}

	peak, err := r.readPeak()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentPeak = peak
	return true
}

// Peak returns the current peak
func (r *Reader) Peak() *core.Peak {
	return r.currentPeak
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every remaining peak
func (r *Reader) ReadAll() ([]core.Peak, error) {
	var peaks []core.Peak
	for r.Next() {
		peaks = append(peaks, *r.Peak())
	}
	return peaks, r.Err()
}

// readHeader maps column names to positions
func (r *Reader) readHeader() error {
	record, err := r.csv.Read()
	if err != nil {
		return err
	}
	r.lineNum, _ = r.csv.FieldPos(0)

	columns := make(map[string]int, len(record))
	for i, name := range record {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnLevel, ColumnMZ, ColumnIntensity} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("line %d: missing required column %q", r.lineNum, required)
		}
	}

	r.columns = columns
	return nil
}

// readPeak parses one data row
func (r *Reader) readPeak() (*core.Peak, error) {
	record, err := r.csv.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("line %d: %w", perr.Line, err)
		}
		return nil, err
	}
	r.lineNum, _ = r.csv.FieldPos(0)

	level, err := strconv.Atoi(r.field(record, ColumnLevel))
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid level: %w", r.lineNum, err)
	}

	mz, err := strconv.ParseFloat(r.field(record, ColumnMZ), 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid m/z value: %w", r.lineNum, err)
	}

	intensity, err := strconv.ParseFloat(r.field(record, ColumnIntensity), 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid intensity value: %w", r.lineNum, err)
	}

	var precursor float64
	if v := r.field(record, ColumnPrecursor); v != "" {
		if precursor, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid precursor m/z: %w", r.lineNum, err)
		}
	}

	peak := &core.Peak{
		ID:        r.field(record, ColumnID),
		Level:     level,
		MZ:        mz,
		Intensity: intensity,
		ParentID:  r.field(record, ColumnParentID),

		PrecursorMZ: precursor,
	}
	if err := peak.Validate(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
	}

	return peak, nil
}

// field returns the trimmed value of a column, or "" when the column or the
// value is missing
func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
