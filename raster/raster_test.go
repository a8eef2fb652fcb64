package raster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	t.Run("valid grid", func(t *testing.T) {
		g, err := NewGrid(3, 2, []float64{1, 2, 3, 4, 5, 6})
		require.NoError(t, err)
		require.Equal(t, 3, g.Width())
		require.Equal(t, 2, g.Height())

		_, ok := g.NoData()
		require.False(t, ok)
	})

	t.Run("nodata option", func(t *testing.T) {
		g, err := NewGrid(1, 1, []float64{0}, WithNoData(-9999))
		require.NoError(t, err)

		noData, ok := g.NoData()
		require.True(t, ok)
		require.Equal(t, -9999.0, noData)
	})

	t.Run("zero extent", func(t *testing.T) {
		_, err := NewGrid(0, 2, nil)
		require.Error(t, err)

		_, err = NewGrid(2, 0, nil)
		require.Error(t, err)
	})

	t.Run("sample count mismatch", func(t *testing.T) {
		_, err := NewGrid(2, 2, []float64{1, 2, 3})
		require.Error(t, err)
	})
}

func TestGridRead(t *testing.T) {
	g, err := NewGrid(4, 3, []float64{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	})
	require.NoError(t, err)

	t.Run("full window", func(t *testing.T) {
		values, err := g.Read(0, 0, 3, 4)
		require.NoError(t, err)
		require.Len(t, values, 12)
		require.Equal(t, 0.0, values[0])
		require.Equal(t, 11.0, values[11])
	})

	t.Run("inner window is row-major", func(t *testing.T) {
		values, err := g.Read(1, 1, 2, 2)
		require.NoError(t, err)
		require.Equal(t, []float64{5, 6, 9, 10}, values)
	})

	t.Run("single pixel", func(t *testing.T) {
		v, err := g.At(2, 3)
		require.NoError(t, err)
		require.Equal(t, 11.0, v)
	})

	t.Run("window outside the raster", func(t *testing.T) {
		tests := [][4]int{
			{-1, 0, 1, 1},
			{0, -1, 1, 1},
			{0, 0, 4, 1},
			{0, 0, 1, 5},
			{2, 3, 2, 2},
			{0, 0, 0, 1},
			{0, 0, 1, 0},
		}

		for _, w := range tests {
			_, err := g.Read(w[0], w[1], w[2], w[3])
			require.Error(t, err, "window %v", w)
		}
	})
}
