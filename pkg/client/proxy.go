// Package client builds callable stubs for the functions a bridge server
// exposes, either from a local module value or from the server's published
// definition.
package client

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
	"github.com/joeydtaylor/steeze-bridge/pkg/signature"
)

// maxResponseBytes bounds how much of a response body is read.
var maxResponseBytes int64 = 16 << 20

// Proxy holds one stub per function of a remote module.
type Proxy struct {
	module string
	names  []string
	stubs  map[string]*Stub
}

// Stub calls one remote function. A nil *Stub is valid and every call on it
// fails with ErrUnknownFunction.
type Stub struct {
	cfg  config
	name string
	sig  signature.Signature
	url  string
}

// NewLocal builds a proxy from a module value available in-process. Functions
// are never invoked locally and nothing is sent until a stub is called.
func NewLocal(baseURL string, m *module.Module, opts ...Option) *Proxy {
	cfg := newConfig(opts)
	p := newProxy(m.Name())
	for _, f := range m.Exports() {
		p.add(cfg, baseURL, f.Name(), f.Signature())
	}
	return p
}

// NewRemote fetches the definition of moduleName from the server at baseURL
// and builds a stub for every function it declares.
func NewRemote(ctx context.Context, baseURL, moduleName string, opts ...Option) (*Proxy, error) {
	if err := module.ValidName(moduleName); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	cfg := newConfig(opts)
	u := strings.TrimRight(baseURL, "/") + cfg.prefix + "/" + url.PathEscape(moduleName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Accept", cfg.codec.ContentType())
	res, err := send(cfg.doer, req)
	if err != nil {
		return nil, err
	}
	def, err := parseDefinition(res)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadDefinition, u, err)
	}

	p := newProxy(moduleName)
	names := make([]string, 0, len(def))
	for name := range def {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.add(cfg, baseURL, name, def[name])
	}
	return p, nil
}

func newProxy(name string) *Proxy {
	return &Proxy{module: name, stubs: map[string]*Stub{}}
}

func (p *Proxy) add(cfg config, baseURL, name string, sig signature.Signature) {
	p.names = append(p.names, name)
	p.stubs[name] = &Stub{
		cfg:  cfg,
		name: name,
		sig:  sig,
		url:  strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(p.module) + "/" + url.PathEscape(name) + "/",
	}
}

// Module returns the name of the module p calls.
func (p *Proxy) Module() string { return p.module }

// Names returns the declared function names.
func (p *Proxy) Names() []string { return append([]string(nil), p.names...) }

// Func returns the stub for name, or nil if the module does not declare it.
func (p *Proxy) Func(name string) *Stub { return p.stubs[name] }

// Definition returns the function names and parameter lists p was built from.
func (p *Proxy) Definition() module.Definition {
	def := make(module.Definition, len(p.stubs))
	for name, s := range p.stubs {
		def[name] = s.sig.Clone()
	}
	return def
}

// Call is shorthand for p.Func(name).Call(ctx, args...).
func (p *Proxy) Call(ctx context.Context, name string, args ...any) (Result, error) {
	return p.Func(name).Call(ctx, args...)
}

// Name returns the function name, or "" for a nil stub.
func (s *Stub) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Signature returns the parameter names the stub binds arguments to.
func (s *Stub) Signature() signature.Signature {
	if s == nil {
		return signature.Signature{}
	}
	return s.sig.Clone()
}

// Call sends args, paired positionally with the parameter names, and returns
// the response. Extra args are dropped and nil args are left out, so the
// server binds those parameters to their zero values.
func (s *Stub) Call(ctx context.Context, args ...any) (Result, error) {
	if s == nil {
		return Result{}, ErrUnknownFunction
	}
	req, err := s.request(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("client: %s: %w", s.name, err)
	}
	req.Header.Set("Accept", s.cfg.codec.ContentType())
	return send(s.cfg.doer, req)
}

func (s *Stub) request(ctx context.Context, args []any) (*http.Request, error) {
	n := min(len(args), len(s.sig))
	if s.cfg.method == http.MethodPost {
		obj := make(map[string]any, n)
		for i := range n {
			if args[i] != nil {
				obj[s.sig[i]] = args[i]
			}
		}
		body, err := json.Marshal(obj)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	// Fields follow the declared parameter order.
	var q []string
	for i := range n {
		if args[i] == nil {
			continue
		}
		v, err := encodeArg(args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", s.sig[i], err)
		}
		q = append(q, url.QueryEscape(s.sig[i])+"="+url.QueryEscape(v))
	}
	u := s.url
	if len(q) > 0 {
		u += "?" + strings.Join(q, "&")
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
}

// encodeArg renders v as query text the server's binder reads back.
func encodeArg(v any) (string, error) {
	if tm, ok := v.(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Slice:
		// Byte slices travel as raw text, which the binder takes verbatim.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes()), nil
		}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func send(doer HTTPDoer, req *http.Request) (Result, error) {
	rsp, err := doer.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer rsp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(rsp.Body, maxResponseBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("client: read %s: %w", req.URL, err)
	}
	if int64(len(body)) > maxResponseBytes {
		return Result{}, fmt.Errorf("%w: %s: over %d bytes", ErrResponseTooLarge, req.URL, maxResponseBytes)
	}
	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return Result{}, &StatusError{Code: rsp.StatusCode, URL: req.URL.String(), Body: bytes.TrimSpace(body)}
	}
	return Result{data: body, codec: codec.ForContentType(rsp.Header.Get("Content-Type"))}, nil
}

func parseDefinition(res Result) (map[string]signature.Signature, error) {
	var raw map[string]any
	if err := res.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("not an object")
	}
	def := make(map[string]signature.Signature, len(raw))
	for name, v := range raw {
		if err := module.ValidName(name); err != nil {
			return nil, err
		}
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%q: parameters are %T, not a list", name, v)
		}
		sig := make(signature.Signature, len(list))
		for i, p := range list {
			s, ok := p.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%q: parameter %d is not a name", name, i)
			}
			sig[i] = s
		}
		def[name] = sig
	}
	return def, nil
}
