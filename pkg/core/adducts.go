package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// AdductDatabase stores named adduct mass offsets
type AdductDatabase struct {
	adducts map[string]float64 // name -> mass offset
}

// NewAdductDatabase creates an empty adduct database
func NewAdductDatabase() *AdductDatabase {
	return &AdductDatabase{
		adducts: make(map[string]float64),
	}
}

// LoadFromCSV loads adducts from a CSV table with a header row followed by
// name,mass records. Extra columns are ignored.
func (db *AdductDatabase) LoadFromCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to read adduct header: %w", err)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read adduct table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) < 2 {
			return fmt.Errorf("line %d: expected name,mass", line)
		}

		name := strings.TrimSpace(record[0])
		mass, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value %q: %w", line, record[1], err)
		}
		db.adducts[name] = mass
	}
}

// GetMass returns the mass offset for an adduct name
func (db *AdductDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.adducts[name]
	return mass, ok
}

// Add adds or updates an adduct
func (db *AdductDatabase) Add(name string, mass float64) {
	db.adducts[name] = mass
}

// Names returns the known adduct names in sorted order
func (db *AdductDatabase) Names() []string {
	names := make([]string, 0, len(db.adducts))
	for name := range db.adducts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAdductList parses a list such as "none;H;22.989218" into mass offsets.
// Each item is either a number or a known adduct name. Separators may be
// commas or semicolons. Duplicate offsets are dropped, order is preserved.
func (db *AdductDatabase) ParseAdductList(list string) ([]float64, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var masses []float64
	seen := make(map[float64]bool)
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		// Try to parse as a number first (direct mass)
		mass, err := strconv.ParseFloat(field, 64)
		if err != nil {
			var ok bool
			mass, ok = db.GetMass(field)
			if !ok {
				return nil, fmt.Errorf("unknown adduct '%s'", field)
			}
		}

		if seen[mass] {
			continue
		}
		seen[mass] = true
		masses = append(masses, mass)
	}

	return masses, nil
}

// DefaultAdductDatabase returns an AdductDatabase pre-loaded with common
// positive-mode offsets
func DefaultAdductDatabase() *AdductDatabase {
	db := NewAdductDatabase()

	db.Add("none", 0.0)
	db.Add("H", MassH)
	db.Add("Proton", ProtonMass)
	db.Add("NH4", 18.033826)
	db.Add("Na", 22.989218)
	db.Add("K", 38.963158)
	db.Add("Li", 7.015456)
	db.Add("H2O", 18.010565)
	db.Add("CH3OH", 32.026215)
	db.Add("ACN", 41.026549)

	return db
}
