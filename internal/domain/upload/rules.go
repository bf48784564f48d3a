package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-file ceiling for staged uploads.
const MaxFileSize = 5 << 20 // 5 MB

// Kinds of staged files. Documents allow PDFs; images do not.
const (
	KindDocument = "document"
	KindImage    = "image"
)

var (
	ErrTooLarge    = fmt.Errorf("file exceeds the %d MB limit", MaxFileSize>>20)
	ErrBadType     = errors.New("file type is not allowed")
	ErrUnknownKind = errors.New("unknown upload kind")
)

var documentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

// Validate checks a candidate file against the size ceiling and the
// MIME/extension allow-list for its kind. Both the declared content type
// and the extension must pass; a rejected file must not enter the staged
// list.
// PRE: size is the exact byte count reported for the file
// POST: nil means the file may be staged
func Validate(kind, filename, contentType string, size int64) error {
	var types, exts map[string]bool
	switch kind {
	case KindDocument:
		types, exts = documentTypes, documentExts
	case KindImage:
		types, exts = imageTypes, imageExts
	default:
		return ErrUnknownKind
	}

	if size > MaxFileSize {
		return ErrTooLarge
	}
	// Content types can carry parameters, e.g. "image/png; charset=binary".
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !types[strings.ToLower(ct)] {
		return ErrBadType
	}
	if !exts[strings.ToLower(filepath.Ext(filename))] {
		return ErrBadType
	}
	return nil
}
