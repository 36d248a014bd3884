package core_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joeydtaylor/steeze-bridge/pkg/core"
	"github.com/joeydtaylor/steeze-bridge/pkg/signature"
)

type point struct{ X, Y int }

func values(vs []reflect.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v.Interface()
	}
	return out
}

func TestBindQuery(t *testing.T) {
	fn := signature.Must("f",
		func(s string, n int, ok bool, f float64, p point, tm time.Time, xs []string, v any) {},
		"s", "n", "ok", "f", "p", "tm", "xs", "v")

	req := httptest.NewRequest(http.MethodGet,
		`/m/f?v=%7B%22a%22%3A1%7D&xs=a&xs=b&tm=2024-01-02T03:04:05Z&p=%7B%22X%22%3A1%2C%22Y%22%3A2%7D&f=1.5&ok=true&n=-7&s=2`, nil)
	args, err := core.Bind(fn, core.QuerySource(req))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	want := []any{
		"2", -7, true, 1.5, point{1, 2},
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		[]string{"a", "b"},
		`{"a":1}`,
	}
	if diff := cmp.Diff(want, values(args)); diff != "" {
		t.Errorf("Bind (-want, +got):\n%s", diff)
	}
}

func TestBindZeroValues(t *testing.T) {
	fn := signature.Must("f", func(n int, tm time.Time, v any) {}, "n", "tm", "v")
	req := httptest.NewRequest(http.MethodGet, "/m/f?n=&tm=", nil)
	args, err := core.Bind(fn, core.QuerySource(req))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if diff := cmp.Diff([]any{0, time.Time{}, nil}, values(args)); diff != "" {
		t.Errorf("Bind (-want, +got):\n%s", diff)
	}
}

func TestBindAnyText(t *testing.T) {
	fn := signature.Must("f", func(v any) {}, "v")
	for _, text := range []string{"hello", "2", "true", `{"a":1}`, ""} {
		req := httptest.NewRequest(http.MethodGet, "/m/f?v="+url.QueryEscape(text), nil)
		args, err := core.Bind(fn, core.QuerySource(req))
		if err != nil {
			t.Fatalf("Bind(%q): %v", text, err)
		}
		if got := args[0].Interface(); got != text {
			t.Errorf("Bind(%q): got %#v, want the text unchanged", text, got)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/m/f", strings.NewReader(`{"v":2}`))
	req.Header.Set("Content-Type", "application/json")
	src, err := core.BodySource(req)
	if err != nil {
		t.Fatalf("BodySource: %v", err)
	}
	args, err := core.Bind(fn, src)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := args[0].Interface(); got != float64(2) {
		t.Errorf("Bind JSON: got %#v, want 2", got)
	}
}

func TestBindBody(t *testing.T) {
	fn := signature.Must("f", func(a string, b []int) {}, "a", "b")

	tests := []struct {
		name, ctype, body string
		want              []any
	}{
		{"JSON", "application/json", `{"b":[1,2],"a":"x"}`, []any{"x", []int{1, 2}}},
		{"JSONNull", "application/json; charset=utf-8", `{"a":null}`, []any{"", []int(nil)}},
		{"Form", "application/x-www-form-urlencoded", "a=x&b=1&b=2", []any{"x", []int{1, 2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/m/f", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.ctype)
			src, err := core.BodySource(req)
			if err != nil {
				t.Fatalf("BodySource: %v", err)
			}
			args, err := core.Bind(fn, src)
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}
			if diff := cmp.Diff(tc.want, values(args)); diff != "" {
				t.Errorf("Bind (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestBindErrors(t *testing.T) {
	fn := signature.Must("f", func(n int) {}, "n")
	req := httptest.NewRequest(http.MethodGet, "/m/f?n=abc", nil)
	_, err := core.Bind(fn, core.QuerySource(req))

	var ce *core.Error
	if !errors.As(err, &ce) || ce.Status != http.StatusBadRequest {
		t.Errorf("Bind: got %v, want 400 error", err)
	}
	if err == nil || !strings.Contains(err.Error(), `"n"`) {
		t.Errorf("Bind error should name the parameter: %v", err)
	}

	big := httptest.NewRequest(http.MethodPost, "/m/f",
		strings.NewReader(`{"n":"`+strings.Repeat("x", 1<<20)+`"}`))
	big.Header.Set("Content-Type", "application/json")
	_, err = core.BodySource(big)
	if !errors.As(err, &ce) || ce.Status != http.StatusRequestEntityTooLarge {
		t.Errorf("BodySource large: got %v, want 413", err)
	}
}
