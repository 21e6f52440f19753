package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Peak is one ion observed at a given MSn acquisition level.
type Peak struct {
	ID        string  // Row identifier, unique within its level (optional)
	Level     int     // MS level, 1 for the full scan
	MZ        float64 // Observed mass
	Intensity float64
	ParentID  string // ID of the precursor peak one level up (optional)

	// PrecursorMZ is the isolated precursor mass, used to find the parent
	// when ParentID is empty. Zero when unknown.
	PrecursorMZ float64
}

// ValidationError represents an error found during peak validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a peak can be placed in a fragmentation tree.
func (p *Peak) Validate() error {
	var errs []string

	if p.Level < 1 {
		errs = append(errs, "level must be at least 1")
	}
	if math.IsNaN(p.MZ) || math.IsInf(p.MZ, 0) {
		errs = append(errs, "invalid m/z")
	} else if p.MZ <= 0 {
		errs = append(errs, "m/z must be positive")
	}
	if math.IsNaN(p.Intensity) || math.IsInf(p.Intensity, 0) {
		errs = append(errs, "invalid intensity")
	} else if p.Intensity < 0 {
		errs = append(errs, "intensity must be non-negative")
	}
	if p.PrecursorMZ < 0 || math.IsNaN(p.PrecursorMZ) {
		errs = append(errs, "precursor m/z must be non-negative")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Peak",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Name returns the peak name in format "MS<level>/<mz>"
func (p *Peak) Name() string {
	return fmt.Sprintf("MS%d/%g", p.Level, p.MZ)
}

// SortPeaks sorts peaks by m/z in ascending order.
func SortPeaks(peaks []Peak) {
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].MZ < peaks[j].MZ
	})
}
