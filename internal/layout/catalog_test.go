package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	require.Equal(t, []int{2, 3, 4, 5}, Default.Dimensions())
	for _, d := range Default.Dimensions() {
		require.GreaterOrEqual(t, Default.Len(d), 1)
		full, err := Default.Variant(d, 0)
		require.NoError(t, err)
		require.Equal(t, "full", full.Name)
		require.Len(t, full.Tiles, d*d)
	}
}

func TestCatalog_VariantReturnsCopy(t *testing.T) {
	t.Parallel()

	v, err := Default.Variant(2, 0)
	require.NoError(t, err)
	v.Tiles[0] = "mutated"

	again, err := Default.Variant(2, 0)
	require.NoError(t, err)
	require.Equal(t, "0", again.Tiles[0])
}

func TestLoadCatalog_RejectsBrokenLayouts(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		src      string
		errorMsg string
	}{
		{
			name: "overlap",
			src: `grid {
  dimension = 2
  layout "full" { tiles = ["0", "1", "2", "3"] }
  layout "bad" { tiles = ["0,1", "1", "2", "3"] }
}`,
			errorMsg: "covered more than once",
		},
		{
			name: "gap",
			src: `grid {
  dimension = 2
  layout "full" { tiles = ["0", "1", "2", "3"] }
  layout "bad" { tiles = ["0,1", "2"] }
}`,
			errorMsg: "3 of 4 cells covered",
		},
		{
			name: "non-rectangular merge",
			src: `grid {
  dimension = 3
  layout "full" { tiles = ["0", "1", "2", "3", "4", "5", "6", "7", "8"] }
  layout "bad" { tiles = ["0,1,3", "2", "4", "5", "6", "7", "8"] }
}`,
			errorMsg: "not a filled rectangle",
		},
		{
			name: "first layout must be the enumeration",
			src: `grid {
  dimension = 2
  layout "full" { tiles = ["1", "0", "2", "3"] }
}`,
			errorMsg: "enumerate cells in order",
		},
		{
			name: "duplicate dimension",
			src: `grid {
  dimension = 2
  layout "full" { tiles = ["0", "1", "2", "3"] }
}
grid {
  dimension = 2
  layout "full" { tiles = ["0", "1", "2", "3"] }
}`,
			errorMsg: "Duplicate grid block",
		},
		{
			name:     "syntax error",
			src:      `grid {`,
			errorMsg: "failed to parse layout catalog",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadCatalog([]byte(tc.src), "test.hcl")

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errorMsg)
		})
	}
}

func TestMustLoadCatalog_Panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		MustLoadCatalog([]byte(`grid { dimension = 2 }`), "empty.hcl")
	})
}
