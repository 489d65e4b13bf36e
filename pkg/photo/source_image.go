package photo

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ryanuber/go-glob"
)

// SourceImage is a raw photograph as handed over by the caller. The pipeline
// never mutates it.
type SourceImage struct {
	Data     []byte
	MimeType string
	Filename string
}

func (img SourceImage) Size() int {
	return len(img.Data)
}

// ResolvedMimeType returns the declared mime type without parameters, or the
// sniffed one when nothing was declared.
func (img SourceImage) ResolvedMimeType() string {
	if img.MimeType != "" {
		mediaType, _, err := mime.ParseMediaType(img.MimeType)
		if err == nil {
			return strings.ToLower(mediaType)
		}

		return strings.ToLower(img.MimeType)
	}

	return img.DetectMimeType()
}

// DetectMimeType sniffs the payload, ignoring the declared type.
func (img SourceImage) DetectMimeType() string {
	detected := mimetype.Detect(img.Data)
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String()
	}

	return mediaType
}

// Extension returns the extension of the payload without the leading dot.
func (img SourceImage) Extension() string {
	if ext := ExtensionForMimeType(img.ResolvedMimeType()); ext != "" {
		return ext
	}

	return strings.TrimPrefix(strings.ToLower(path.Ext(img.Filename)), ".")
}

// IsJPEG reports whether the declared mime type or the filename point at a
// JPEG-family container. Only when neither is present the payload is sniffed.
func IsJPEG(img SourceImage) bool {
	if img.MimeType != "" && matchesAny(img.ResolvedMimeType(), jpegMimePatterns) {
		return true
	}

	if img.Filename != "" && matchesAny(strings.ToLower(path.Base(img.Filename)), jpegFilenamePatterns) {
		return true
	}

	if img.MimeType == "" && path.Ext(img.Filename) == "" {
		return matchesAny(img.DetectMimeType(), jpegMimePatterns)
	}

	return false
}

func ExtensionForMimeType(mimeType string) string {
	if ext, known := knownExtensions[mimeType]; known {
		return ext
	}

	if detected := mimetype.Lookup(mimeType); detected != nil {
		return strings.TrimPrefix(detected.Extension(), ".")
	}

	return ""
}

func matchesAny(value string, patterns []string) bool {
	for _, pattern := range patterns {
		if glob.Glob(pattern, value) {
			return true
		}
	}

	return false
}

var jpegMimePatterns = []string{
	"image/jpeg",
	"image/jpg",
	"image/pjpeg",
}

var jpegFilenamePatterns = []string{
	"*.jpg",
	"*.jpeg",
	"*.jpe",
	"*.jfif",
}

var knownExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
	"image/avif": "avif",
	"image/png":  "png",
	"image/heic": "heic",
}
