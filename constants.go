package tvs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"sort"

	stgpsr "github.com/yuin/stagparser"
)

// Constants are the values shared by every kernel invocation within a
// sector. They mirror the GPU constants buffer layout in spec.md §6, which
// must be byte-identical between a CPU and a GPU dispatch.
//
// Field order in the packed buffer is declared once, here, via the `tvs`
// struct tag, and read back out with stagparser rather than hand-maintained
// separately — the same pattern the teacher pack uses to drive TileDB
// attribute schemas from struct tags (see schema.go's schemaAttrs).
type Constants struct {
	// DimensionsX/Y/Z/W describe the GPU dispatch grid; on the CPU path
	// these are left zeroed and unused.
	DimensionsX uint32 `tvs:"order=0"`
	DimensionsY uint32 `tvs:"order=1"`
	DimensionsZ uint32 `tvs:"order=2"`
	DimensionsW uint32 `tvs:"order=3"`
	// TotalBands is the total number of forward and backward bands.
	TotalBands uint32 `tvs:"order=4"`
	// MaxLOSAsPoints is the maximum search distance in DEM cells.
	MaxLOSAsPoints uint32 `tvs:"order=5"`
	// DEMWidth is the original DEM width in cells.
	DEMWidth uint32 `tvs:"order=6"`
	// TVSWidth is the width of the computable sub-grid.
	TVSWidth uint32 `tvs:"order=7"`
	// ObserverHeight is the height of the observer above the terrain, in
	// meters.
	ObserverHeight float32 `tvs:"order=8"`
	// ReservedRingsPerBand is the amount of ring-data memory reserved
	// per band.
	ReservedRingsPerBand uint32 `tvs:"order=9"`
	// pad0/pad1 keep the buffer aligned to 16 bytes, matching the GPU
	// struct's explicit padding fields.
	pad0 uint32
	pad1 uint32
}

// ErrPackConstants is returned when the Constants struct can't be packed
// into its GPU buffer layout, e.g. a missing or malformed `tvs` tag.
var ErrPackConstants = errors.New("Error packing Constants buffer")

// Pack serialises c into the little-endian byte layout spec.md §6 requires,
// ordering fields by their `tvs:"order=N"` tag rather than Go struct
// declaration order (which the binary.Write approach below happens to
// match, but the tag is the source of truth so a future field reorder can't
// silently desync the wire format).
func (c *Constants) Pack() ([]byte, error) {
	defs, err := stgpsr.ParseStruct(c, "tvs")
	if err != nil {
		return nil, errors.Join(ErrPackConstants, err)
	}

	type orderedField struct {
		order int
		name  string
	}
	fields := make([]orderedField, 0, len(defs))
	for name, fieldDefs := range defs {
		for _, d := range fieldDefs {
			if d.Name() == "order" {
				order, _ := d.Attribute("order")
				n, ok := order.(int)
				if !ok {
					return nil, errors.Join(ErrPackConstants, errors.New("order tag is not an int"))
				}
				fields = append(fields, orderedField{order: n, name: name})
			}
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].order < fields[j].order })

	values := reflect.ValueOf(c).Elem()
	buf := new(bytes.Buffer)
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, values.FieldByName(f.name).Interface()); err != nil {
			return nil, errors.Join(ErrPackConstants, err)
		}
	}
	// Trailing padding, matching the GPU struct's two reserved u32 pads.
	if err := binary.Write(buf, binary.LittleEndian, uint32(0)); err != nil {
		return nil, errors.Join(ErrPackConstants, err)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(0)); err != nil {
		return nil, errors.Join(ErrPackConstants, err)
	}

	return buf.Bytes(), nil
}
