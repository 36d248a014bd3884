// pkg/codec/cbor.go
package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

type cborCodec struct{ dec cbor.DecMode }

// mapStringAny makes CBOR maps decode like JSON objects when the target is any.
var mapStringAny = reflect.TypeOf(map[string]any(nil))

// CBOR is offered to clients that send "Accept: application/cbor".
var CBOR Codec = newCBOR()

func newCBOR() cborCodec {
	dm, err := cbor.DecOptions{DefaultMapType: mapStringAny}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{dec: dm}
}

func (cborCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (c cborCodec) Unmarshal(data []byte, v any) error {
	if err := c.dec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}

func (cborCodec) ContentType() string { return "application/cbor" }
