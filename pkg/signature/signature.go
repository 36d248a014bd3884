// Package signature describes exported functions by their ordered parameter
// names.
//
// Go cannot recover parameter names at runtime, so every function exposed over
// the bridge is paired with its names once, when it is declared. The resulting
// Func is the only place names are stored: the server binds requests with it,
// the definition endpoint publishes it, and local proxies encode calls from it.
package signature

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Signature is the ordered list of a function's formal parameter names.
type Signature []string

// Clone returns a copy of s that shares no storage with it.
func (s Signature) Clone() Signature {
	if s == nil {
		return Signature{}
	}
	out := make(Signature, len(s))
	copy(out, s)
	return out
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Func is a callable paired with its declared parameter names.
type Func struct {
	name   string
	params Signature

	fn      reflect.Value
	withCtx bool // first Go parameter is a context.Context
	hasRes  bool // returns a value (R or (R, error))
	hasErr  bool // last result is an error
}

// New describes fn under name with the given parameter names.
//
// fn must be a func. A leading context.Context parameter is implicit and is
// not named. Results may be none, R, error, or (R, error).
func New(name string, fn any, params ...string) (*Func, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("signature: name required")
	}
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("signature: %s: not a function (%T)", name, fn)
	}
	t := v.Type()

	f := &Func{name: name, fn: v}
	first := 0
	if t.NumIn() > 0 && t.In(0) == ctxType {
		f.withCtx = true
		first = 1
	}
	if want := t.NumIn() - first; len(params) != want {
		return nil, fmt.Errorf("signature: %s: %d parameter names for %d parameters", name, len(params), want)
	}

	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("signature: %s: empty parameter name", name)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("signature: %s: duplicate parameter name %q", name, p)
		}
		seen[p] = struct{}{}
	}
	f.params = Signature(params).Clone()

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errType {
			f.hasErr = true
		} else {
			f.hasRes = true
		}
	case 2:
		if t.Out(1) != errType {
			return nil, fmt.Errorf("signature: %s: second result must be error, got %s", name, t.Out(1))
		}
		f.hasRes, f.hasErr = true, true
	default:
		return nil, fmt.Errorf("signature: %s: too many results (%d)", name, t.NumOut())
	}
	return f, nil
}

// Must is like New but panics on error.
func Must(name string, fn any, params ...string) *Func {
	f, err := New(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return f
}

// Of returns the signature of f, or an empty signature if f is nil.
func Of(f *Func) Signature {
	if f == nil {
		return Signature{}
	}
	return f.Signature()
}

// Name returns the export name f was declared with.
func (f *Func) Name() string { return f.name }

// Signature returns a copy of the declared parameter names.
func (f *Func) Signature() Signature { return f.params.Clone() }

// NumParams reports the number of named parameters.
func (f *Func) NumParams() int { return len(f.params) }

// In returns the Go type of the i'th named parameter. For a variadic function
// the last parameter has slice type.
func (f *Func) In(i int) reflect.Type {
	if f.withCtx {
		i++
	}
	return f.fn.Type().In(i)
}

// Variadic reports whether the last named parameter is a rest parameter.
func (f *Func) Variadic() bool { return f.fn.Type().IsVariadic() }

// TakesContext reports whether f receives the call context as its first
// argument.
func (f *Func) TakesContext() bool { return f.withCtx }

// Call invokes f positionally with args, which must match the named
// parameters in order and type. The context is prepended when f takes one.
func (f *Func) Call(ctx context.Context, args []reflect.Value) (any, error) {
	if len(args) != len(f.params) {
		return nil, fmt.Errorf("signature: %s: got %d arguments, want %d", f.name, len(args), len(f.params))
	}
	in := args
	if f.withCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(ctx))
		in = append(in, args...)
	}

	var out []reflect.Value
	if f.Variadic() {
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}

	var (
		res any
		err error
	)
	if f.hasRes {
		res = out[0].Interface()
	}
	if f.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	return res, err
}
