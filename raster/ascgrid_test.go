package raster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeASCIIGrid(t *testing.T) {
	t.Run("full header", func(t *testing.T) {
		g, err := DecodeASCIIGrid(strings.NewReader(`ncols 4
nrows 2
xllcorner 100.5
yllcorner -25.0
cellsize 30
NODATA_value -9999
1 2 3 4
-9999 6 7 8
`))
		require.NoError(t, err)
		require.Equal(t, 4, g.Width())
		require.Equal(t, 2, g.Height())
		require.Equal(t, 100.5, g.XLLCorner)
		require.Equal(t, -25.0, g.YLLCorner)
		require.Equal(t, 30.0, g.CellSize)

		noData, ok := g.NoData()
		require.True(t, ok)
		require.Equal(t, -9999.0, noData)

		values, err := g.Read(0, 0, 2, 4)
		require.NoError(t, err)
		require.Equal(t, []float64{1, 2, 3, 4, -9999, 6, 7, 8}, values)
	})

	t.Run("minimal header without nodata", func(t *testing.T) {
		g, err := DecodeASCIIGrid(strings.NewReader("ncols 2\nnrows 2\n1 2\n3 4\n"))
		require.NoError(t, err)

		_, ok := g.NoData()
		require.False(t, ok)

		v, err := g.At(1, 0)
		require.NoError(t, err)
		require.Equal(t, 3.0, v)
	})

	t.Run("case-insensitive header keys", func(t *testing.T) {
		g, err := DecodeASCIIGrid(strings.NewReader("NCOLS 1\nNROWS 1\nNoData_Value 0\n5\n"))
		require.NoError(t, err)
		require.Equal(t, 1, g.Width())
	})

	t.Run("missing dimensions", func(t *testing.T) {
		_, err := DecodeASCIIGrid(strings.NewReader("cellsize 30\n1 2\n"))
		require.Error(t, err)
	})

	t.Run("sample count mismatch", func(t *testing.T) {
		_, err := DecodeASCIIGrid(strings.NewReader("ncols 2\nnrows 2\n1 2 3\n"))
		require.Error(t, err)
	})

	t.Run("malformed sample", func(t *testing.T) {
		_, err := DecodeASCIIGrid(strings.NewReader("ncols 2\nnrows 1\n1 x\n"))
		require.Error(t, err)
	})
}

func TestOpenASCIIGrid(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "test.asc")
		require.NoError(t, os.WriteFile(name, []byte("ncols 2\nnrows 1\n1 2\n"), 0644))

		g, err := OpenASCIIGrid(name)
		require.NoError(t, err)
		require.Equal(t, 2, g.Width())
		require.Equal(t, 1, g.Height())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenASCIIGrid(filepath.Join(t.TempDir(), "missing.asc"))
		require.Error(t, err)
	})
}
