package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdductList(t *testing.T) {
	db := DefaultAdductDatabase()

	tests := []struct {
		name    string
		list    string
		want    []float64
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"names", "none,H", []float64{0, MassH}, false},
		{"mixed separators", "none; 22.989218", []float64{0, 22.989218}, false},
		{"duplicates dropped", "H,1.0078250321,Na", []float64{MassH, 22.989218}, false},
		{"proton", "Proton", []float64{ProtonMass}, false},
		{"unknown name", "none,Xx", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ParseAdductList(tt.list)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdductLoadFromCSV(t *testing.T) {
	db := NewAdductDatabase()
	csv := "name,mass\nFormate,44.998201\n\nAcetate,59.013851\n"

	require.NoError(t, db.LoadFromCSV(strings.NewReader(csv)))

	mass, ok := db.GetMass("Formate")
	assert.True(t, ok)
	assert.InDelta(t, 44.998201, mass, 1e-9)
	assert.Equal(t, []string{"Acetate", "Formate"}, db.Names())
}

func TestAdductLoadFromCSVInvalid(t *testing.T) {
	db := NewAdductDatabase()
	err := db.LoadFromCSV(strings.NewReader("name,mass\nFormate,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
