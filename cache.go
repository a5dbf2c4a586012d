package tvs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Cache stores the per-sector band deltas and distances computed by Axes
// and CompileBandDeltas, keyed by (DEM width, sector angle), so repeat runs
// over the same DEM don't repeat the O(n log n) geometric preparation
// (spec.md §4.4 step 1, §6's "Cache layout").
//
// Storage goes through TileDB's VFS abstraction rather than bare os.*calls,
// so a cache directory can transparently live on local disk or an
// object-store URI (s3://, …) — the same trick the teacher pack uses in
// search.go and json.go to let a single code path serve both.
type Cache struct {
	ctx    *tiledb.Context
	vfs    *tiledb.VFS
	config *tiledb.Config
	base   string // e.g. "/var/lib/total-viewsheds" or "s3://bucket/prefix"
}

// NewCache opens a Cache rooted at stateDir/total-viewsheds, using a generic
// TileDB config if configURI is empty (mirroring search.FindGsf's
// config-loading fallback).
func NewCache(stateDir string, configURI string) (*Cache, error) {
	var config *tiledb.Config
	var err error

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, errors.Join(ErrIOFailure, err)
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, errors.Join(ErrIOFailure, err)
	}

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, errors.Join(ErrIOFailure, err)
	}

	return &Cache{
		ctx:    ctx,
		vfs:    vfs,
		config: config,
		base:   path.Join(stateDir, "total-viewsheds"),
	}, nil
}

// Close releases the underlying TileDB handles.
func (c *Cache) Close() {
	c.vfs.Free()
	c.ctx.Free()
	c.config.Free()
}

func (c *Cache) demDir(width uint32) string {
	return path.Join(c.base, fmt.Sprintf("%d", width))
}

func (c *Cache) bandDeltasPath(width uint32, angle uint16) string {
	return path.Join(c.demDir(width), "band_deltas", fmt.Sprintf("%d.bin", angle))
}

func (c *Cache) distancesPath(width uint32, angle uint16) string {
	return path.Join(c.demDir(width), "distances", fmt.Sprintf("%d.bin", angle))
}

// EnsureDirectories creates the band_deltas/ and distances/ directories
// under the DEM-width-keyed cache root, if they don't already exist.
func (c *Cache) EnsureDirectories(width uint32) error {
	for _, sub := range []string{"band_deltas", "distances"} {
		dir := path.Join(c.demDir(width), sub)
		exists, err := c.vfs.IsDir(dir)
		if err != nil {
			return errors.Join(ErrCacheCreateDirs, err)
		}
		if !exists {
			if err := c.vfs.CreateDir(dir); err != nil {
				return errors.Join(ErrCacheCreateDirs, err)
			}
		}
	}
	return nil
}

// Load reports whether both the band-delta and distance caches exist for
// (width, angle) and, if so, returns their deserialised contents. Presence
// of both files constitutes a hit, per spec.md §6.
func (c *Cache) Load(width uint32, angle uint16) (hit bool, deltas []int32, distances []float32, err error) {
	deltasPath := c.bandDeltasPath(width, angle)
	distancesPath := c.distancesPath(width, angle)

	deltasExist, err := c.vfs.IsFile(deltasPath)
	if err != nil {
		return false, nil, nil, errors.Join(ErrIOFailure, err)
	}
	distancesExist, err := c.vfs.IsFile(distancesPath)
	if err != nil {
		return false, nil, nil, errors.Join(ErrIOFailure, err)
	}
	if !deltasExist || !distancesExist {
		return false, nil, nil, nil
	}

	deltaBytes, err := readAll(c.vfs, deltasPath)
	if err != nil {
		return false, nil, nil, errors.Join(ErrCacheReadBandDeltas, err)
	}
	distanceBytes, err := readAll(c.vfs, distancesPath)
	if err != nil {
		return false, nil, nil, errors.Join(ErrCacheReadDistances, err)
	}

	deltas, err = decodeInt32LE(deltaBytes)
	if err != nil {
		return false, nil, nil, errors.Join(ErrCacheReadBandDeltas, err)
	}
	distances, err = decodeFloat32LE(distanceBytes)
	if err != nil {
		return false, nil, nil, errors.Join(ErrCacheReadDistances, err)
	}

	return true, deltas, distances, nil
}

// Save persists deltas and distances for (width, angle) as raw
// little-endian arrays, per spec.md §6's cache layout.
func (c *Cache) Save(width uint32, angle uint16, deltas []int32, distances []float32) error {
	if err := c.EnsureDirectories(width); err != nil {
		return err
	}

	deltaBytes, err := encodeInt32LE(deltas)
	if err != nil {
		return errors.Join(ErrCacheWriteBandDeltas, err)
	}
	if err := writeAll(c.vfs, c.bandDeltasPath(width, angle), deltaBytes); err != nil {
		return errors.Join(ErrCacheWriteBandDeltas, err)
	}

	distanceBytes, err := encodeFloat32LE(distances)
	if err != nil {
		return errors.Join(ErrCacheWriteDistances, err)
	}
	if err := writeAll(c.vfs, c.distancesPath(width, angle), distanceBytes); err != nil {
		return errors.Join(ErrCacheWriteDistances, err)
	}

	return nil
}

func readAll(vfs *tiledb.VFS, uri string) ([]byte, error) {
	size, err := vfs.FileSize(uri)
	if err != nil {
		return nil, err
	}

	fh, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	buffer := make([]byte, size)
	if _, err := io.ReadFull(fh, buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func writeAll(vfs *tiledb.VFS, uri string, data []byte) error {
	fh, err := vfs.Open(uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return err
	}
	defer fh.Close()

	_, err = fh.Write(data)
	return err
}

func encodeInt32LE(values []int32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeInt32LE(data []byte) ([]int32, error) {
	values := make([]int32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func encodeFloat32LE(values []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFloat32LE(data []byte) ([]float32, error) {
	values := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &values); err != nil {
		return nil, err
	}
	return values, nil
}
