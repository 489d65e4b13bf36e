package testutils

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// ExifEntry is a single IFD entry written by WithExif.
type ExifEntry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value uint16
}

// OrientationEntry is the well formed orientation entry for value.
func OrientationEntry(value uint16) ExifEntry {
	return ExifEntry{Tag: 0x0112, Type: 3, Count: 1, Value: value}
}

// WithExif inserts an Exif APP1 segment holding entries right after the SOI
// marker of jpegData.
func WithExif(jpegData []byte, littleEndian bool, entries ...ExifEntry) []byte {
	var order binary.ByteOrder = binary.BigEndian
	byteOrderMark := []byte("MM")
	if littleEndian {
		order = binary.LittleEndian
		byteOrderMark = []byte("II")
	}

	tiff := bytes.Buffer{}
	tiff.Write(byteOrderMark)
	binary.Write(&tiff, order, uint16(42))
	binary.Write(&tiff, order, uint32(8))
	binary.Write(&tiff, order, uint16(len(entries)))
	for _, entry := range entries {
		binary.Write(&tiff, order, entry.Tag)
		binary.Write(&tiff, order, entry.Type)
		binary.Write(&tiff, order, entry.Count)
		binary.Write(&tiff, order, entry.Value)
		binary.Write(&tiff, order, uint16(0))
	}
	binary.Write(&tiff, order, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	return WithSegment(jpegData, 0xFFE1, payload)
}

// WithSegment inserts a raw marker segment right after the SOI marker.
func WithSegment(jpegData []byte, marker uint16, payload []byte) []byte {
	segment := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint16(segment, marker)
	binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))
	segment = append(segment, payload...)

	result := make([]byte, 0, len(jpegData)+len(segment))
	result = append(result, jpegData[:2]...)
	result = append(result, segment...)
	return append(result, jpegData[2:]...)
}

// QuadrantImage returns a w x h image whose four quadrants are red, green,
// blue and white (top-left, top-right, bottom-left, bottom-right).
func QuadrantImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, QuadrantColor(x < w/2, y < h/2))
		}
	}

	return img
}

func QuadrantColor(left, top bool) color.RGBA {
	switch {
	case left && top:
		return color.RGBA{255, 0, 0, 255}
	case top:
		return color.RGBA{0, 255, 0, 255}
	case left:
		return color.RGBA{0, 0, 255, 255}
	default:
		return color.RGBA{255, 255, 255, 255}
	}
}

// NoiseImage returns an image that does not compress well.
func NoiseImage(w, h int, seed uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	state := seed | 1
	for i := 0; i < len(img.Pix); i += 4 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		img.Pix[i] = byte(state)
		img.Pix[i+1] = byte(state >> 8)
		img.Pix[i+2] = byte(state >> 16)
		img.Pix[i+3] = 255
	}

	return img
}

func EncodeJPEG(t testing.TB, img image.Image, quality int) []byte {
	buff := bytes.Buffer{}
	if err := jpeg.Encode(&buff, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("cannot encode test jpeg: %v", err)
	}

	return buff.Bytes()
}
