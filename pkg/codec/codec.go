// pkg/codec/codec.go
package codec

import (
	"mime"
	"strings"
)

// Codec encodes call results and decodes call bodies for one media type.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// Negotiate picks the codec for an Accept header. JSON is the default; CBOR is
// used only when the client asks for it explicitly.
func Negotiate(accept string) Codec {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == CBOR.ContentType() {
			return CBOR
		}
		if mt == JSON.ContentType() {
			return JSON
		}
	}
	return JSON
}

// ForContentType returns the codec for a response Content-Type, or JSON when
// the type is unknown.
func ForContentType(ct string) Codec {
	mt, _, err := mime.ParseMediaType(ct)
	if err == nil && mt == CBOR.ContentType() {
		return CBOR
	}
	return JSON
}
