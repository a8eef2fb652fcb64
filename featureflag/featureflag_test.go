package featureflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	f := New([]string{string(FlagDisableParallelBuild)})

	t.Run("is set", func(t *testing.T) {
		require.True(t, f.IsSet(FlagDisableParallelBuild))
		require.False(t, f.IsSet(FlagStrictNoData))
	})

	t.Run("run if enabled", func(t *testing.T) {
		var runDisableParallel bool
		f.IfSet(FlagDisableParallelBuild, func() {
			runDisableParallel = true
		})
		require.True(t, runDisableParallel)

		var runStrictNoData bool
		f.IfSet(FlagStrictNoData, func() {
			runStrictNoData = true
		})
		require.False(t, runStrictNoData)
	})

	t.Run("run if disabled", func(t *testing.T) {
		var runDisableParallel bool
		f.IfNotSet(FlagDisableParallelBuild, func() {
			runDisableParallel = true
		})
		require.False(t, runDisableParallel)

		var runStrictNoData bool
		f.IfNotSet(FlagStrictNoData, func() {
			runStrictNoData = true
		})
		require.True(t, runStrictNoData)
	})
}
