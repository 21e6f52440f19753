package core

import (
	"fmt"
	"sort"
	"strings"
)

// Spectrum is one acquired MSn scan: the fragments observed after isolating
// a precursor at Level-1.
type Spectrum struct {
	Name        string
	Level       int     // MS level of the peaks, 1 for the full scan
	PrecursorMZ float64 // Isolated precursor mass; 0 for MS1
	Peaks       []Peak

	// Internal tracking
	SourceFile   string
	SourceFormat string // msp, csv
}

// Validate checks that a spectrum meets all requirements for tree building.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.Level < 1 {
		errs = append(errs, "level must be at least 1")
	}
	if s.Level > 1 && s.PrecursorMZ <= 0 {
		errs = append(errs, "precursor m/z must be positive above MS1")
	}
	if len(s.Peaks) == 0 {
		errs = append(errs, "at least one peak is required")
	}

	// Peaks are checked as table rows so they carry the spectrum level.
	for i, peak := range s.TablePeaks() {
		if err := peak.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("peak %d: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	SortPeaks(s.Peaks)
}

// ArePeaksSorted checks if peaks are sorted by m/z.
func (s *Spectrum) ArePeaksSorted() bool {
	return sort.SliceIsSorted(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// TablePeaks returns the peaks as peak table rows carrying the spectrum
// level and precursor mass. Peaks that already have an ID keep it; the
// rest are named "<name>:<index>".
func (s *Spectrum) TablePeaks() []Peak {
	out := make([]Peak, len(s.Peaks))
	for i, p := range s.Peaks {
		p.Level = s.Level
		p.PrecursorMZ = s.PrecursorMZ
		if p.ID == "" {
			p.ID = fmt.Sprintf("%s:%d", s.Name, i)
		}
		out[i] = p
	}
	return out
}
