// Package filter provides peak filtering functions for MSn peak tables
package filter

import (
	"sort"

	"github.com/ChrisMcGann/recma/pkg/core"
)

// Config holds filtering configuration. Intensity filters are applied per
// fragmentation group: the peaks of one level that share a parent.
type Config struct {
	TopN            int     // Keep only top N most intense peaks per group (0 = no limit)
	IntensityCutoff float64 // Keep only peaks above this % of the group base peak (0 = no cutoff)
	MaxLevel        int     // Drop peaks above this MS level (0 = keep all)
	MinMZ           float64 // Drop peaks at or below this mass (0 = keep all)
}

// Group identifies the peaks produced by fragmenting one precursor.
type Group struct {
	Level    int
	ParentID string
}

// Apply applies all configured filters and returns the surviving peaks
// sorted by level, then m/z.
func (c *Config) Apply(peaks []core.Peak) []core.Peak {
	peaks = RemoveZeroIntensityPeaks(peaks)

	if c.MaxLevel > 0 || c.MinMZ > 0 {
		peaks = c.filterByRange(peaks)
	}

	groups := GroupPeaks(peaks)
	var out []core.Peak
	for _, g := range sortedGroups(groups) {
		group := groups[g]

		// Apply intensity filters
		if c.IntensityCutoff > 0 {
			group = c.filterByIntensity(group)
		}

		// Apply top-N filter
		if c.TopN > 0 {
			group = c.filterTopN(group)
		}

		out = append(out, group...)
	}

	SortByLevel(out)
	return out
}

// filterByRange drops peaks outside the configured level and mass range
func (c *Config) filterByRange(peaks []core.Peak) []core.Peak {
	var filtered []core.Peak
	for _, peak := range peaks {
		if c.MaxLevel > 0 && peak.Level > c.MaxLevel {
			continue
		}
		if c.MinMZ > 0 && peak.MZ <= c.MinMZ {
			continue
		}
		filtered = append(filtered, peak)
	}
	return filtered
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(peaks []core.Peak) []core.Peak {
	if len(peaks) == 0 {
		return peaks
	}

	// Find the group base peak
	maxIntensity := 0.0
	for _, peak := range peaks {
		if peak.Intensity > maxIntensity {
			maxIntensity = peak.Intensity
		}
	}

	threshold := (c.IntensityCutoff / 100.0) * maxIntensity

	var filtered []core.Peak
	for _, peak := range peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}
	return filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(peaks []core.Peak) []core.Peak {
	if len(peaks) <= c.TopN {
		return peaks
	}

	// Sort a copy by intensity descending
	sorted := make([]core.Peak, len(peaks))
	copy(sorted, peaks)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Intensity > sorted[j].Intensity
	})

	return sorted[:c.TopN]
}

// GroupPeaks splits peaks into fragmentation groups. MS1 peaks and peaks
// without a parent ID are grouped by level alone.
func GroupPeaks(peaks []core.Peak) map[Group][]core.Peak {
	groups := make(map[Group][]core.Peak)
	for _, peak := range peaks {
		g := Group{Level: peak.Level, ParentID: peak.ParentID}
		groups[g] = append(groups[g], peak)
	}
	return groups
}

func sortedGroups(groups map[Group][]core.Peak) []Group {
	keys := make([]Group, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Level != keys[j].Level {
			return keys[i].Level < keys[j].Level
		}
		return keys[i].ParentID < keys[j].ParentID
	})
	return keys
}

// SortByLevel sorts peaks by level, then m/z.
func SortByLevel(peaks []core.Peak) {
	sort.SliceStable(peaks, func(i, j int) bool {
		if peaks[i].Level != peaks[j].Level {
			return peaks[i].Level < peaks[j].Level
		}
		return peaks[i].MZ < peaks[j].MZ
	})
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(peaks []core.Peak) []core.Peak {
	var filtered []core.Peak
	for _, peak := range peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	return filtered
}
