// core/bind.go
package core

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/joeydtaylor/steeze-bridge/pkg/signature"
)

var (
	maxBodyBytes     int64 = 1 << 20  // 1MB JSON body
	defaultFormLimit int64 = 32 << 20 // 32MB multipart memory
)

// Field is one named request value as it arrived on the wire: query or form
// values as text, or a member of a JSON body.
type Field struct {
	Texts []string
	JSON  json.RawMessage
}

// FieldSource looks up a request field by parameter name.
type FieldSource func(name string) (Field, bool)

// QuerySource reads fields from the URL query string (GET calls).
func QuerySource(r *http.Request) FieldSource {
	if r.URL == nil {
		return valuesSource(nil)
	}
	return valuesSource(r.URL.Query())
}

// BodySource reads fields from the request body (POST calls). JSON object
// bodies are read member by member; anything else is parsed as a form.
func BodySource(r *http.Request) (FieldSource, error) {
	if requestBodyIsJSON(r) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			return nil, badRequest(fmt.Errorf("read body: %w", err))
		}
		if int64(len(body)) > maxBodyBytes {
			return nil, NewError(http.StatusRequestEntityTooLarge, "", nil)
		}
		var obj map[string]json.RawMessage
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &obj); err != nil {
				return nil, badRequest(fmt.Errorf("body must be a JSON object: %w", err))
			}
		}
		return func(name string) (Field, bool) {
			raw, ok := obj[name]
			if !ok || string(raw) == "null" {
				return Field{}, false
			}
			return Field{JSON: raw}, true
		}, nil
	}

	var err error
	if requestBodyMediaType(r) == "multipart/form-data" {
		err = r.ParseMultipartForm(defaultFormLimit)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, badRequest(fmt.Errorf("parse form: %w", err))
	}
	return valuesSource(r.PostForm), nil
}

func valuesSource(v url.Values) FieldSource {
	return func(name string) (Field, bool) {
		xs := v[name]
		if len(xs) == 0 {
			return Field{}, false
		}
		return Field{Texts: xs}, true
	}
}

// Bind builds the positional arguments of f from src, following the declared
// parameter order. Missing fields bind to the zero value of their parameter.
//
// Text fields (query and form values) are converted to the parameter type;
// an untyped (any) parameter receives the text as a string. JSON body members
// are decoded as JSON, so an any parameter receives the JSON value.
func Bind(f *signature.Func, src FieldSource) ([]reflect.Value, error) {
	names := f.Signature()
	args := make([]reflect.Value, len(names))
	for i, name := range names {
		t := f.In(i)
		fld, ok := src(name)
		if !ok {
			args[i] = reflect.Zero(t)
			continue
		}
		v, err := decodeField(fld, t)
		if err != nil {
			return nil, badRequest(fmt.Errorf("parameter %q: %w", name, err))
		}
		args[i] = v
	}
	return args, nil
}

var bytesType = reflect.TypeOf([]byte(nil))

func decodeField(f Field, t reflect.Type) (reflect.Value, error) {
	if f.JSON == nil {
		return decodeTexts(f.Texts, t)
	}
	ptr := reflect.New(t)
	err := json.Unmarshal(f.JSON, ptr.Interface())
	if err == nil {
		return ptr.Elem(), nil
	}
	// Form-style clients send every value as a JSON string.
	var s string
	if t.Kind() != reflect.String && json.Unmarshal(f.JSON, &s) == nil {
		return decodeText(s, t)
	}
	return reflect.Value{}, err
}

func decodeTexts(xs []string, t reflect.Type) (reflect.Value, error) {
	if len(xs) == 0 {
		return reflect.Zero(t), nil
	}
	if t.Kind() == reflect.Slice && t != bytesType && !implementsText(t) &&
		(len(xs) > 1 || !strings.HasPrefix(strings.TrimSpace(xs[0]), "[")) {
		// Repeated values fill the slice one element each.
		out := reflect.MakeSlice(t, 0, len(xs))
		for _, x := range xs {
			v, err := decodeText(x, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, v)
		}
		return out, nil
	}
	return decodeText(xs[0], t)
}

func decodeText(s string, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		// Untyped parameters keep the text as a string.
		ptr.Elem().Set(reflect.ValueOf(s))
		return ptr.Elem(), nil
	}
	if s == "" {
		return ptr.Elem(), nil
	}
	if tu, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		if err := tu.UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}
	switch {
	case t.Kind() == reflect.String:
		ptr.Elem().SetString(s)
		return ptr.Elem(), nil
	case t == bytesType:
		ptr.Elem().SetBytes([]byte(s))
		return ptr.Elem(), nil
	}
	if err := json.Unmarshal([]byte(s), ptr.Interface()); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return reflect.Value{}, fmt.Errorf("cannot parse %q as %s", s, t)
		}
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func implementsText(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem())
}

func requestBodyIsJSON(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	mt := requestBodyMediaType(r)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func requestBodyMediaType(r *http.Request) string {
	ct := strings.TrimSpace(r.Header.Get("Content-Type"))
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(ct)
	}
	return strings.ToLower(mt)
}
