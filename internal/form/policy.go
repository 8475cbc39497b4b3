package form

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileBytes is the per-file ceiling, enforced at the transport layer
	// while parts are read.
	MaxFileBytes = 20 << 20
	// MaxTotalBytes is the aggregate ceiling across all attachments.
	MaxTotalBytes = 30 << 20
)

var (
	ErrUnsupportedFileType = errors.New("Unsupported file type")
	ErrTotalSizeExceeded   = errors.New("Total attachments exceed 30MB")
	ErrFileTooLarge        = fmt.Errorf("File exceeds %dMB limit", MaxFileBytes>>20)
)

var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"image/png":          true,
	"image/jpeg":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// AllowedType reports whether a declared attachment media type is on the
// allow-list.
func AllowedType(contentType string) bool {
	return allowedTypes[contentType]
}

// CheckAttachments enforces the file policy: every file's type must be
// allowed and the running byte total must stay within maxTotal. When a
// declared content type is missing or the generic octet-stream, the actual
// bytes are sniffed instead of rejecting outright. Type and size violations
// return distinct errors.
func CheckAttachments(attachments []Attachment, maxTotal int64) error {
	var total int64
	for _, f := range attachments {
		ct := f.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = mimetype.Detect(f.Data).String()
		}
		if !allowedTypes[ct] {
			return ErrUnsupportedFileType
		}
		total += f.Size
		if total > maxTotal {
			return ErrTotalSizeExceeded
		}
	}
	return nil
}
