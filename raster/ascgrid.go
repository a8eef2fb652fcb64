package raster

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ASCIIGrid is a Grid decoded from the ESRI ASCII grid format, along with the
// georeferencing fields of its header. The fields are carried through for
// reporting but are not interpreted: projection and coordinate handling belong
// to a dedicated geospatial library.
type ASCIIGrid struct {
	*Grid

	XLLCorner float64
	YLLCorner float64
	CellSize  float64
}

// OpenASCIIGrid decodes the ESRI ASCII grid file at the given path.
func OpenASCIIGrid(name string) (*ASCIIGrid, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.New("opening raster file failed").
			WithTag("file_name", name).
			Wrap(err)
	}
	defer f.Close()

	g, err := DecodeASCIIGrid(f)
	if err != nil {
		return nil, errors.New("decoding raster file failed").
			WithTag("file_name", name).
			Wrap(err)
	}
	return g, nil
}

// DecodeASCIIGrid decodes an ESRI ASCII grid: a header of "key value" lines
// (ncols and nrows required, xllcorner, yllcorner, cellsize and nodata_value
// optional) followed by nrows lines of whitespace-separated samples, top row
// first.
func DecodeASCIIGrid(r io.Reader) (*ASCIIGrid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var (
		ncols, nrows   int
		noData         float64
		hasNoData      bool
		xll, yll, cell float64
	)

	var fields []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields = strings.Fields(line)
		if len(fields) != 2 || !isHeaderKey(fields[0]) {
			break
		}

		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.New("parsing header value failed").
				WithTag("key", fields[0]).
				Wrap(err)
		}

		switch strings.ToLower(fields[0]) {
		case "ncols":
			ncols = int(value)
		case "nrows":
			nrows = int(value)
		case "xllcorner", "xllcenter":
			xll = value
		case "yllcorner", "yllcenter":
			yll = value
		case "cellsize":
			cell = value
		case "nodata_value":
			noData = value
			hasNoData = true
		}
		fields = nil
	}

	if ncols <= 0 || nrows <= 0 {
		return nil, errors.New("header is missing positive ncols/nrows").
			WithTag("ncols", ncols).
			WithTag("nrows", nrows)
	}

	values := make([]float64, 0, ncols*nrows)

	// fields still holds the first data line when the header loop broke on it.
	appendSamples := func(fields []string) error {
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return errors.New("parsing sample failed").
					WithTag("sample", f).
					Wrap(err)
			}
			values = append(values, v)
		}
		return nil
	}

	if err := appendSamples(fields); err != nil {
		return nil, err
	}
	for scanner.Scan() {
		if err := appendSamples(strings.Fields(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New("reading raster data failed").Wrap(err)
	}

	if len(values) != ncols*nrows {
		return nil, errors.New("sample count does not match header dimensions").
			WithTag("ncols", ncols).
			WithTag("nrows", nrows).
			WithTag("sample_count", len(values))
	}

	var opts []GridOption
	if hasNoData {
		opts = append(opts, WithNoData(noData))
	}

	grid, err := NewGrid(ncols, nrows, values, opts...)
	if err != nil {
		return nil, err
	}

	return &ASCIIGrid{
		Grid:      grid,
		XLLCorner: xll,
		YLLCorner: yll,
		CellSize:  cell,
	}, nil
}

func isHeaderKey(s string) bool {
	switch strings.ToLower(s) {
	case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter",
		"cellsize", "nodata_value":
		return true
	}
	return false
}
