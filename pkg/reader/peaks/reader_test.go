package peaks

import (
	"strings"
	"testing"

	"github.com/ChrisMcGann/recma/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	input := `level,mz,intensity,id,parent_id
# MS1
1,371.2,1000,p1,
2,150.1,500,c1,p1
2, 221.3 ,300,c2,p1
3,72.3,50,g1,c1
`
	peaks, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, peaks, 4)

	assert.Equal(t, core.Peak{ID: "p1", Level: 1, MZ: 371.2, Intensity: 1000}, peaks[0])
	assert.Equal(t, core.Peak{ID: "c2", Level: 2, MZ: 221.3, Intensity: 300, ParentID: "p1"}, peaks[2])
	assert.Equal(t, "c1", peaks[3].ParentID)
}

func TestReaderColumnOrderAndOptionalColumns(t *testing.T) {
	input := "Intensity,MZ,Level,scan\n10,371.2,1,17\n5,150.1,2,18\n"

	r := NewReader(strings.NewReader(input))
	var got []core.Peak
	for r.Next() {
		got = append(got, *r.Peak())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []core.Peak{
		{Level: 1, MZ: 371.2, Intensity: 10},
		{Level: 2, MZ: 150.1, Intensity: 5},
	}, got)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing column", "level,mz\n1,100\n", `missing required column "intensity"`},
		{"bad level", "level,mz,intensity\nMS1,100,1\n", "line 2: invalid level"},
		{"bad mass", "level,mz,intensity\n1,abc,1\n", "line 2: invalid m/z value"},
		{"negative mass", "level,mz,intensity\n1,100,1\n1,-3,1\n", "line 3: validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).ReadAll()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}

func TestReaderPrecursorColumn(t *testing.T) {
	input := "level,mz,intensity,precursor_mz\n1,371.2,10,\n2,150.1,5,371.2\n"

	peaks, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, peaks, 2)
	assert.Equal(t, 0.0, peaks[0].PrecursorMZ)
	assert.Equal(t, 371.2, peaks[1].PrecursorMZ)
}
