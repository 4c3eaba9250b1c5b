package chain

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/ksuid"
)

// NewUID get a new KSUID.
//
// KSUID is for K-Sortable Unique IDentifier. It is a kind of globally unique identifier similar to a RFC 4122 UUID,
// built from the ground-up to be "naturally" sorted by generation timestamp without any special type-aware logic.
//
// See: https://github.com/segmentio/ksuid
func NewUID() string {
	return ksuid.New().String()
}

// HashXxh64 computes the xxHash of the content, formatted as a strong ETag
func HashXxh64(content []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(content), 36) + `"`
}

// IsBodyAllowedForStatus reports whether a response with the given status code may carry a body (RFC 7230 3.3).
func IsBodyAllowedForStatus(code int) bool {
	switch {
	case code < http.StatusOK:
		return false
	case code == http.StatusNoContent, code == http.StatusResetContent, code == http.StatusNotModified:
		return false
	}
	return true
}

// filterFlags removes the parameters of a media type ("text/xml; charset=utf-8" -> "text/xml")
func filterFlags(content string) string {
	for i, char := range content {
		if char == ' ' || char == ';' {
			return content[:i]
		}
	}
	return content
}

// MediaType returns the lowercase media type of a Content-Type header value, without parameters
func MediaType(contentType string) string {
	return strings.ToLower(filterFlags(strings.TrimSpace(contentType)))
}
