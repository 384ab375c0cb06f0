package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps how much of a request body the sanitizer will
// buffer. Larger bodies are refused outright rather than read into
// memory.
const maxBodyBytes = 1 << 20

// operatorKey reports whether a request-supplied key could be
// interpreted as a document-store query operator. Keys beginning with
// '$' select operators; keys containing '.' traverse into nested
// fields.
func operatorKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

// SanitizeValue strips operator-shaped keys from a decoded JSON value
// at any nesting depth. Ordinary keys and all values pass through
// untouched.
func SanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if operatorKey(k) {
				continue
			}
			out[k] = SanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, inner := range val {
			out = append(out, SanitizeValue(inner))
		}
		return out
	default:
		return v
	}
}

// SanitizeValues filters operator-shaped keys out of url.Values.
func SanitizeValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		if operatorKey(k) {
			continue
		}
		out[k] = vs
	}
	return out
}

// Sanitize is the gin middleware that scrubs query parameters, form and
// JSON bodies, and path parameters before any downstream handler sees
// them.
func Sanitize() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request

		// Query string.
		if r.URL.RawQuery != "" {
			r.URL.RawQuery = SanitizeValues(r.URL.Query()).Encode()
		}

		// Path parameters carry values, not keys; strip the operator
		// prefix so a "$where"-shaped segment cannot reach a query.
		for i, p := range c.Params {
			c.Params[i].Value = strings.TrimLeft(p.Value, "$")
		}

		switch {
		case r.Body == nil || r.ContentLength == 0:
			// nothing to scrub

		case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
			body, ok := readBody(c)
			if !ok {
				return
			}
			var decoded any
			if err := json.Unmarshal(body, &decoded); err != nil {
				// Not JSON after all; hand the original bytes on.
				r.Body = io.NopCloser(bytes.NewReader(body))
				break
			}
			clean, err := json.Marshal(SanitizeValue(decoded))
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(clean))
			r.ContentLength = int64(len(clean))

		case strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"):
			body, ok := readBody(c)
			if !ok {
				return
			}
			form, err := url.ParseQuery(string(body))
			if err != nil {
				r.Body = io.NopCloser(bytes.NewReader(body))
				break
			}
			clean := SanitizeValues(form).Encode()
			r.Body = io.NopCloser(strings.NewReader(clean))
			r.ContentLength = int64(len(clean))
		}

		c.Next()
	}
}

// readBody buffers the request body under the maxBodyBytes cap,
// aborting the request when it cannot. Oversized bodies get a 413.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		} else {
			c.AbortWithStatus(http.StatusBadRequest)
		}
		return nil, false
	}
	return body, true
}
