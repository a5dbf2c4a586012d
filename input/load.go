package input

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// ErrUnsupportedExt is returned for any DEM file extension other than .bt
// and .hgt.
var ErrUnsupportedExt = errors.New("Unsupported DEM file extension")

// Result is the common shape every loader normalises to, regardless of
// on-disk format.
type Result struct {
	Width      uint32
	Elevations []float32
	Scale      float64
}

// Load opens uri through TileDB's VFS and dispatches to the loader matching
// its extension. scaleOverride, if non-zero, takes precedence over a
// loader-derived scale. originLat is only consulted for .hgt inputs.
func Load(uri string, configURI string, inMemory bool, scaleOverride float64, originLat float64) (Result, error) {
	var config *tiledb.Config
	var err error

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return Result{}, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return Result{}, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return Result{}, err
	}
	defer vfs.Free()

	size, err := vfs.FileSize(uri)
	if err != nil {
		return Result{}, err
	}

	fh, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return Result{}, err
	}
	defer fh.Close()

	stream, err := GenericStream(fh, size, inMemory)
	if err != nil {
		return Result{}, err
	}

	ext := strings.ToLower(filepath.Ext(uri))

	var width uint32
	var elevations []float32
	var scale float64

	switch ext {
	case ".bt":
		width, elevations, scale, err = LoadBT(stream)
	case ".hgt":
		raw := make([]byte, size)
		if _, err = io.ReadFull(stream, raw); err != nil {
			return Result{}, err
		}
		width, elevations, scale, err = LoadHGT(raw, originLat)
	default:
		return Result{}, errors.Join(ErrUnsupportedExt, errors.New(ext))
	}
	if err != nil {
		return Result{}, err
	}

	if scaleOverride != 0 {
		scale = scaleOverride
	}

	return Result{Width: width, Elevations: elevations, Scale: scale}, nil
}
