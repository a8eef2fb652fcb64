package quadtree

// Error types attached to errors returned by this package. They are inspected
// with errors.Type and errors.IsType from go-tooling.
const (
	// ErrTypeInvalidParameter reports build parameters that are rejected
	// before any raster access. Never worth retrying.
	ErrTypeInvalidParameter = "invalid_parameter"

	// ErrTypeRasterAccess reports a raster read failure that aborted a
	// build. The underlying cause is wrapped.
	ErrTypeRasterAccess = "raster_access"

	// ErrTypeOutOfBounds reports a point query outside the tree extent.
	ErrTypeOutOfBounds = "out_of_bounds"
)
