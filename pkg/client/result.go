package client

import (
	"context"

	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
)

// Result is the response body of a successful call.
type Result struct {
	data  []byte
	codec codec.Codec
}

// Bytes returns the encoded response body.
func (r Result) Bytes() []byte { return r.data }

// Decode decodes the response body into v.
func (r Result) Decode(v any) error {
	c := r.codec
	if c == nil {
		c = codec.JSON
	}
	return c.Unmarshal(r.data, v)
}

// Invoke calls s and decodes the result as a T.
func Invoke[T any](ctx context.Context, s *Stub, args ...any) (T, error) {
	var out T
	res, err := s.Call(ctx, args...)
	if err != nil {
		return out, err
	}
	err = res.Decode(&out)
	return out, err
}
