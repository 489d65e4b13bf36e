package orientation

import (
	"bytes"
	"encoding/binary"

	"github.com/thebartekbanach/inspectphoto/pkg/photo"
)

// Read returns the orientation the photograph declares, or Upright when the
// file is not a JPEG or carries no usable orientation tag.
func Read(img photo.SourceImage) Orientation {
	if !photo.IsJPEG(img) {
		return Upright
	}

	if value, found := Parse(img.Data); found {
		return value
	}

	return Upright
}

// Parse walks the JPEG segment structure of data looking for the orientation
// tag of the first IFD of an Exif APP1 segment. It is total: any byte
// sequence yields either a found orientation or found == false.
func Parse(data []byte) (value Orientation, found bool) {
	if len(data) < 4 || binary.BigEndian.Uint16(data) != markerSOI {
		return Upright, false
	}

	offset := 2
	for offset+4 <= len(data) {
		// fill bytes may precede a marker
		if data[offset] == 0xFF && data[offset+1] == 0xFF {
			offset++
			continue
		}

		marker := binary.BigEndian.Uint16(data[offset:])
		if marker&0xFF00 != 0xFF00 || marker == markerSOS || marker == markerEOI {
			return Upright, false
		}

		length := int(binary.BigEndian.Uint16(data[offset+2:]))
		segmentEnd := offset + 2 + length
		if length < 2 || segmentEnd > len(data) {
			return Upright, false
		}

		if marker == markerAPP1 {
			switch value, result := parseExifSegment(data[offset+4 : segmentEnd]); result {
			case segmentFound:
				return value, true
			case segmentMalformed:
				return Upright, false
			}
		}

		offset = segmentEnd
	}

	return Upright, false
}

type segmentResult int

const (
	segmentNotExif segmentResult = iota
	segmentFound
	segmentMalformed
)

func parseExifSegment(payload []byte) (Orientation, segmentResult) {
	if len(payload) < len(exifSignature) || !bytes.Equal(payload[:len(exifSignature)], exifSignature) {
		return Upright, segmentNotExif
	}

	tiff := payload[len(exifSignature):]
	if len(tiff) < 8 {
		return Upright, segmentMalformed
	}

	var order binary.ByteOrder
	switch binary.BigEndian.Uint16(tiff) {
	case byteOrderIntel:
		order = binary.LittleEndian
	case byteOrderMotorola:
		order = binary.BigEndian
	default:
		return Upright, segmentMalformed
	}

	if order.Uint16(tiff[2:]) != tiffMagic {
		return Upright, segmentMalformed
	}

	ifdOffset := uint64(order.Uint32(tiff[4:]))
	if ifdOffset < 8 || ifdOffset+2 > uint64(len(tiff)) {
		return Upright, segmentMalformed
	}

	entryCount := int(order.Uint16(tiff[ifdOffset:]))
	entries := int(ifdOffset) + 2
	for i := 0; i < entryCount; i++ {
		entry := entries + i*ifdEntrySize
		if entry+ifdEntrySize > len(tiff) {
			return Upright, segmentMalformed
		}

		if order.Uint16(tiff[entry:]) != tagOrientation {
			continue
		}

		if order.Uint16(tiff[entry+2:]) != typeUnsignedShort || order.Uint32(tiff[entry+4:]) != 1 {
			return Upright, segmentMalformed
		}

		value := Orientation(order.Uint16(tiff[entry+8:]))
		if !value.Valid() {
			return Upright, segmentMalformed
		}

		return value, segmentFound
	}

	return Upright, segmentMalformed
}

const (
	markerSOI  = 0xFFD8
	markerEOI  = 0xFFD9
	markerSOS  = 0xFFDA
	markerAPP1 = 0xFFE1

	byteOrderIntel    = 0x4949
	byteOrderMotorola = 0x4D4D
	tiffMagic         = 0x002A

	ifdEntrySize      = 12
	tagOrientation    = 0x0112
	typeUnsignedShort = 3
)

var exifSignature = []byte{'E', 'x', 'i', 'f', 0, 0}
