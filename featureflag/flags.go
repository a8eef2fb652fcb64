package featureflag

type Flag string

const (
	FlagDisableParallelBuild Flag = "DISABLE_PARALLEL_BUILD"
	FlagStrictNoData         Flag = "STRICT_NODATA"
)
