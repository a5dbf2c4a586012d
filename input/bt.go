package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
)

// ErrBTMagic is returned when a file's header doesn't carry the Binary
// Terrain v1.3 magic string.
var ErrBTMagic = errors.New("Not a Binary Terrain v1.3 file")

// ErrBTDataSize is returned for an unsupported .bt integer data size (the
// format only permits 2-byte int16 samples for non-float data).
var ErrBTDataSize = errors.New("Unsupported .bt field value for data size")

// btHeaderSize is the fixed on-disk header size for a .bt v1.3 file; the
// fields actually read occupy less than this, the remainder is reserved.
const btHeaderSize = 256

// BTHeader is the fixed-layout .bt v1.3 header.
type BTHeader struct {
	Width             uint32
	Height            uint32
	DataSize          uint16
	IsFloat           bool
	HorizontalUnits   uint16
	UTMZone           uint16
	Datum             uint16
	Left              float64
	Right             float64
	Bottom            float64
	Top               float64
	ProjectionSource  uint16
	VerticalScale     float32
}

// LoadBT reads a Binary Terrain v1.3 elevation raster from stream, returning
// its elevations as a row-major float32 grid plus a meters-per-cell scale
// derived from the header's geographic extent.
func LoadBT(stream Stream) (width uint32, elevations []float32, scale float64, err error) {
	magic := make([]byte, 10)
	if _, err = io.ReadFull(stream, magic); err != nil {
		return 0, nil, 0, err
	}
	if string(magic) != "binterr1.3" {
		return 0, nil, 0, ErrBTMagic
	}

	header, err := readBTHeader(stream)
	if err != nil {
		return 0, nil, 0, err
	}
	log.Printf("DEM header parsed: %+v", header)

	if _, err = stream.Seek(btHeaderSize, 0); err != nil {
		return 0, nil, 0, err
	}

	pointsCount := int(header.Width) * int(header.Height)
	var dataBytes int
	if header.IsFloat {
		dataBytes = pointsCount * 4
	} else {
		dataBytes = pointsCount * 2
	}

	buffer := make([]byte, dataBytes)
	if _, err = io.ReadFull(stream, buffer); err != nil {
		return 0, nil, 0, err
	}

	log.Printf("loading %d DEM points", pointsCount)
	elevations = make([]float32, pointsCount)
	if header.IsFloat {
		for i := 0; i < pointsCount; i++ {
			bits := binary.LittleEndian.Uint32(buffer[i*4 : i*4+4])
			elevations[i] = math.Float32frombits(bits)
		}
	} else {
		if header.DataSize != 2 {
			return 0, nil, 0, fmt.Errorf("%w: %d", ErrBTDataSize, header.DataSize)
		}
		for i := 0; i < pointsCount; i++ {
			v := int16(binary.LittleEndian.Uint16(buffer[i*2 : i*2+2]))
			elevations[i] = float32(v)
		}
	}

	scale = btScale(header)
	log.Printf("DEM scale calculated to %fm", scale)

	return header.Width, elevations, scale, nil
}

func readBTHeader(stream Stream) (BTHeader, error) {
	var header BTHeader
	var err error

	if header.Width, err = readU32LE(stream); err != nil {
		return header, err
	}
	if header.Height, err = readU32LE(stream); err != nil {
		return header, err
	}
	if header.DataSize, err = readU16LE(stream); err != nil {
		return header, err
	}
	isFloat, err := readU16LE(stream)
	if err != nil {
		return header, err
	}
	header.IsFloat = isFloat != 0
	if header.HorizontalUnits, err = readU16LE(stream); err != nil {
		return header, err
	}
	if header.UTMZone, err = readU16LE(stream); err != nil {
		return header, err
	}
	if header.Datum, err = readU16LE(stream); err != nil {
		return header, err
	}
	if header.Left, err = readF64LE(stream); err != nil {
		return header, err
	}
	if header.Right, err = readF64LE(stream); err != nil {
		return header, err
	}
	if header.Bottom, err = readF64LE(stream); err != nil {
		return header, err
	}
	if header.Top, err = readF64LE(stream); err != nil {
		return header, err
	}
	if header.ProjectionSource, err = readU16LE(stream); err != nil {
		return header, err
	}
	if header.VerticalScale, err = readF32LE(stream); err != nil {
		return header, err
	}

	return header, nil
}

// btScale derives meters-per-cell from the haversine distance between the
// header's top-left and top-right corners, divided by width.
func btScale(header BTHeader) float64 {
	distance := haversineMeters(header.Top, header.Left, header.Top, header.Right)
	return distance / float64(header.Width)
}

func readU16LE(s Stream) (uint16, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(s, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func readU32LE(s Stream) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(s, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func readF32LE(s Stream) (float32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(s, buf); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
}

func readF64LE(s Stream) (float64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(s, buf); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}
