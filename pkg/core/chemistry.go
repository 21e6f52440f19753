// Package core provides the fragmentation tree model, chemistry constants and
// mass arithmetic helpers shared by the estimator packages.
package core

import (
	"math"
	"sort"
)

// Monoisotopic masses used for default adducts and the fragment floor.
const (
	MassH = 1.0078250321
	MassC = 12.0000000000

	// ProtonMass is the [M+H]+ offset of the "Proton" adduct.
	ProtonMass = 1.00727646688
)

// Isotopes maps element names to the monoisotopic mass of their most
// abundant isotope. Masses matching one of these entries are treated as
// atoms and need no joining step.
var Isotopes = map[string]float64{
	"Antimony":     120.903824,
	"Argon":        39.962383,
	"Arsenic":      74.921596,
	"Barium":       137.905236,
	"Bismuth":      208.980388,
	"Bromine":      78.918336,
	"Cadmium":      113.903361,
	"Calcium":      39.962591,
	"Cerium":       139.905442,
	"Cesium":       132.905433,
	"Chlorine":     34.968853,
	"Chromium":     51.94051,
	"Cobalt":       58.933198,
	"Copper":       62.929599,
	"Dysprosium":   163.929183,
	"Erbium":       165.930305,
	"Europium":     152.921243,
	"Gadolinium":   157.924111,
	"Gallium":      68.925581,
	"Germanium":    73.921179,
	"Gold":         196.96656,
	"Hafnium":      179.946561,
	"Holmium":      164.930332,
	"Indium":       114.903875,
	"Iodine":       126.904477,
	"Iridium":      192.962942,
	"Iron":         55.934939,
	"Krypton":      83.911506,
	"Lanthanum":    138.906355,
	"Lead":         207.976641,
	"Lutetium":     174.940785,
	"Manganese":    54.938046,
	"Mercury":      201.970632,
	"Neodymium":    141.907731,
	"Nickel":       57.935347,
	"Niobium":      92.906378,
	"Osmium":       191.961487,
	"Palladium":    105.903475,
	"Platinum":     194.964785,
	"Potassium":    38.963708,
	"Praseodymium": 140.907657,
	"Rhenium":      186.955765,
	"Rhodium":      102.905503,
	"Rubidium":     84.9118,
	"Ruthenium":    101.904348,
	"Samarium":     151.919741,
	"Selenium":     79.916521,
	"Silver":       106.905095,
	"Sulfur":       33.967868,
	"Tantalum":     180.948014,
	"Tellurium":    129.906229,
	"Terbium":      158.92535,
	"Thallium":     204.97441,
	"Thorium":      232.038054,
	"Thulium":      168.934225,
	"Tin":          119.902199,
	"Titanium":     47.947947,
	"Tungsten":     183.950953,
	"Uranium":      238.050786,
	"Vanadium":     50.943963,
	"Xenon":        131.904148,
	"Ytterbium":    173.938873,
	"Yttrium":      88.905856,
	"Zinc":         63.929145,
	"Zirconium":    89.904708,
}

// isotopeMasses holds the Isotopes values sorted ascending for binary search.
var isotopeMasses = sortedIsotopeMasses()

func sortedIsotopeMasses() []float64 {
	masses := make([]float64, 0, len(Isotopes))
	for _, m := range Isotopes {
		masses = append(masses, m)
	}
	sort.Float64s(masses)
	return masses
}

// NearestIsotope returns the isotope mass closest to mass and its distance.
func NearestIsotope(mass float64) (float64, float64) {
	i := sort.SearchFloat64s(isotopeMasses, mass)
	best, dist := math.NaN(), math.Inf(1)
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(isotopeMasses) {
			continue
		}
		if d := math.Abs(isotopeMasses[j] - mass); d < dist {
			best, dist = isotopeMasses[j], d
		}
	}
	return best, dist
}

// IsIsotope reports whether mass lies within tolerance of a known isotope.
func IsIsotope(mass, tolerance float64) bool {
	_, dist := NearestIsotope(mass)
	return dist < tolerance
}

// WithinTolerance reports whether two masses differ by less than tolerance.
func WithinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
