package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeakValidate(t *testing.T) {
	tests := []struct {
		name    string
		peak    Peak
		wantErr bool
	}{
		{"valid", Peak{Level: 1, MZ: 371.2, Intensity: 100}, false},
		{"zero level", Peak{Level: 0, MZ: 371.2, Intensity: 100}, true},
		{"negative m/z", Peak{Level: 2, MZ: -1, Intensity: 100}, true},
		{"NaN m/z", Peak{Level: 2, MZ: math.NaN(), Intensity: 100}, true},
		{"negative intensity", Peak{Level: 2, MZ: 72.3, Intensity: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.peak.Validate()
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortPeaks(t *testing.T) {
	peaks := []Peak{{MZ: 300}, {MZ: 100}, {MZ: 200}}
	SortPeaks(peaks)
	assert.Equal(t, []float64{100, 200, 300}, []float64{peaks[0].MZ, peaks[1].MZ, peaks[2].MZ})
}

func TestPeakName(t *testing.T) {
	p := Peak{Level: 2, MZ: 150.1}
	assert.Equal(t, "MS2/150.1", p.Name())
}
