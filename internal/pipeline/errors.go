package pipeline

import "fmt"

// InvalidUploadError rejects a request before any resource is
// allocated: missing filename or a content type outside the allow
// list. Handlers map it to a client error.
type InvalidUploadError struct {
	Reason string
}

func (e *InvalidUploadError) Error() string { return e.Reason }

// allowedContentTypes is the fixed ingress allow-list.
var allowedContentTypes = map[string]bool{
	"audio/wav":   true,
	"audio/mpeg":  true,
	"video/mp4":   true,
	"audio/x-m4a": true,
}

// ValidateUpload checks filename and content type. It must run before
// the pipeline touches disk or network.
func ValidateUpload(filename, contentType string) error {
	if filename == "" {
		return &InvalidUploadError{Reason: "filename is missing"}
	}
	if !allowedContentTypes[contentType] {
		return &InvalidUploadError{
			Reason: fmt.Sprintf("unsupported file type: %s, supported types are mp4, mp3, m4a, wav", contentType),
		}
	}
	return nil
}
