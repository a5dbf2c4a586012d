// Package input loads digital elevation models from two raster formats:
// Binary Terrain (.bt) and SRTM height (.hgt).
package input

import (
	"bytes"
	"encoding/binary"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream caters for a generic reader so a DEM can be loaded from a file on
// disk or object store, as well as from an in-memory byte buffer. Either a
// *tiledb.VFSfh or a *bytes.Reader satisfies it — all that's needed is Read
// and Seek.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// GenericStream optionally slurps a VFS file handle into an in-memory byte
// stream, or leaves it as a streamed *tiledb.VFSfh, depending on inMemory.
func GenericStream(stream *tiledb.VFSfh, size uint64, inMemory bool) (Stream, error) {
	if !inMemory {
		return stream, nil
	}

	buffer := make([]byte, size)
	if err := binary.Read(stream, binary.BigEndian, &buffer); err != nil {
		return nil, err
	}
	return bytes.NewReader(buffer), nil
}
