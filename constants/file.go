package constants

import "strings"

// Declared MIME types accepted at the pipeline entry point.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Format is the coarse input family used for stage routing.
type Format string

const (
	PDF   Format = "PDF"
	DOCX  Format = "DOCX"
	IMAGE Format = "IMAGE"
)

// AllowedMimeTypes holds the MIME types the pipeline accepts.
var AllowedMimeTypes = map[string]Format{
	MimePDF:  PDF,
	MimeDOCX: DOCX,
	MimeJPEG: IMAGE,
	MimePNG:  IMAGE,
}

// MapMimeToFormat maps a declared MIME type to its format family.
// Returns "" for anything the pipeline does not accept.
func MapMimeToFormat(mimeType string) Format {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	return AllowedMimeTypes[clean]
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToMime maps a file extension to a declared MIME type, for CLI callers
// that only have a path. Returns "" when the extension is not accepted.
func MapExtToMime(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MimePDF
	case "docx":
		return MimeDOCX
	case "jpg", "jpeg":
		return MimeJPEG
	case "png":
		return MimePNG
	default:
		return ""
	}
}
