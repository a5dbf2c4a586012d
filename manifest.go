package tvs

import (
	"encoding/json"
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// RunManifest records the configuration of a single run, written alongside
// its heatmap output for reproducibility — the same role the teacher's
// file_info.Metadata/-metadata.json pair serves for a decoded GSF file.
type RunManifest struct {
	DEMPath        string  `json:"dem_path"`
	DEMWidth       uint32  `json:"dem_width"`
	Scale          float64 `json:"scale"`
	MaxLineOfSight uint32  `json:"max_line_of_sight"`
	ObserverHeight float32 `json:"observer_height"`
	RingsPerKm     float32 `json:"rings_per_km"`
	ComputeBackend string  `json:"compute_backend"`
}

// WriteJSON serialises data as indented JSON to fileURI, which may be a
// local path or an object-store URI — TileDB's VFS transparently covers
// both, removing the file first if it already exists.
func WriteJSON(fileURI string, configURI string, data any) (int, error) {
	var config *tiledb.Config
	var err error

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return 0, errors.Join(ErrIOFailure, err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, errors.Join(ErrIOFailure, err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, errors.Join(ErrIOFailure, err)
	}
	defer vfs.Free()

	stream, err := vfs.Open(fileURI, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, errors.Join(ErrIOFailure, err)
	}
	defer stream.Close()

	encoded, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	n, err := stream.Write(encoded)
	if err != nil {
		return 0, errors.Join(ErrIOFailure, err)
	}

	return n, nil
}
