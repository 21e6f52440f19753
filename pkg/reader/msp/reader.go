// Package msp provides streaming readers for MSP format MSn spectra
package msp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/recma/pkg/core"
)

// Reader provides streaming access to MSP format files
type Reader struct {
	scanner *bufio.Scanner
	line    int
	current *core.Spectrum
	err     error
}

// NewReader creates a new MSP reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *Reader) Next() bool {
	r.current = nil
	if r.err != nil {
		return false
	}

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *core.Spectrum {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readSpectrum reads a single spectrum entry from the MSP file
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	spec := &core.Spectrum{
		SourceFormat: "msp",
		Level:        1,
		Peaks:        []core.Peak{},
	}

	var numPeaks int
	inPeaks := false
	started := false
	peaksRead := 0

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip empty lines between entries
		if line == "" {
			if started && !inPeaks {
				return nil, fmt.Errorf("line %d: entry %q has no peak list", r.line, spec.Name)
			}
			continue
		}
		started = true

		if !inPeaks {
			n, done, err := r.parseHeader(spec, line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
			if done {
				numPeaks = n
				inPeaks = true
				if numPeaks == 0 {
					return spec, nil
				}
			}
		} else {
			peak, err := r.parsePeak(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
			spec.Peaks = append(spec.Peaks, peak)
			peaksRead++

			if peaksRead >= numPeaks {
				return spec, nil
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A truncated peak list still yields the peaks that were read
	if inPeaks && peaksRead > 0 {
		return spec, nil
	}
	if started {
		return nil, fmt.Errorf("line %d: unexpected end of entry %q", r.line, spec.Name)
	}

	return nil, io.EOF
}

// parseHeader applies one "Key: value" line to spec. done is set by the
// Num Peaks line, which ends the header and gives the peak count.
func (r *Reader) parseHeader(spec *core.Spectrum, line string) (n int, done bool, err error) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return 0, false, fmt.Errorf("expected 'Key: value', got %q", line)
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		spec.Name = value
	case "mslevel", "msn", "spectrum_type":
		if spec.Level, err = parseLevel(value); err != nil {
			return 0, false, err
		}
	case "precursormz", "parent", "pepmass":
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return 0, false, fmt.Errorf("empty precursor m/z")
		}
		if spec.PrecursorMZ, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return 0, false, fmt.Errorf("invalid precursor m/z: %w", err)
		}
	case "comment":
		if err := r.parseComment(spec, value); err != nil {
			return 0, false, err
		}
	case "num peaks":
		if n, err = strconv.Atoi(value); err != nil {
			return 0, false, fmt.Errorf("invalid num peaks: %w", err)
		}
		return n, true, nil
	}
	return 0, false, nil
}

// parseLevel accepts "2", "MS2" or "ms2"
func parseLevel(value string) (int, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(value), "MS")
	level, err := strconv.Atoi(trimmed)
	if err != nil || level < 1 {
		return 0, fmt.Errorf("invalid MS level %q", value)
	}
	return level, nil
}

// parseComment extracts metadata from the Comment field
func (r *Reader) parseComment(spec *core.Spectrum, comment string) error {
	// Comment format: key=value key=value...
	// Example: Parent=371.2 Level=2 Scan=117

	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch key {
		case "Parent", "PrecursorMZ":
			mz, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid parent m/z in comment: %w", err)
			}
			spec.PrecursorMZ = mz
		case "Level", "MSLevel":
			level, err := parseLevel(value)
			if err != nil {
				return err
			}
			spec.Level = level
		}
	}

	return nil
}

// parsePeak parses a single peak line (format: "mz\tintensity[\t\"id\"]")
func (r *Reader) parsePeak(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	peak := core.Peak{
		MZ:        mz,
		Intensity: intensity,
	}

	// An optional quoted third field names the peak
	if len(fields) >= 3 {
		peak.ID = strings.Trim(fields[2], "\"")
	}

	return peak, nil
}
