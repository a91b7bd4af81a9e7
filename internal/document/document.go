package document

import (
	"fmt"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
)

// Input is one document submitted for extraction. Immutable; built once per
// request, discarded when the pipeline run ends.
type Input struct {
	Bytes    []byte
	MimeType string
	Format   constants.Format
	Size     int64
}

// New validates the preconditions (accepted MIME type, size cap) and builds
// the pipeline input. Both checks run before any extraction stage.
func New(data []byte, declaredMimeType string, maxSizeBytes int64) (*Input, error) {
	format := constants.MapMimeToFormat(declaredMimeType)
	if format == "" {
		return nil, fmt.Errorf("%w: mime type %q", common.ErrUnsupportedType, declaredMimeType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", common.ErrMalformedInput)
	}
	if maxSizeBytes > 0 && int64(len(data)) > maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", common.ErrSizeExceeded, len(data), maxSizeBytes)
	}
	return &Input{
		Bytes:    data,
		MimeType: declaredMimeType,
		Format:   format,
		Size:     int64(len(data)),
	}, nil
}
