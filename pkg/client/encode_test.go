package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type color string

func TestEncodeArg(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{color("red"), "red"},
		{true, "true"},
		{-3, "-3"},
		{uint8(7), "7"},
		{1.25, "1.25"},
		{float32(0.5), "0.5"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{[]byte("hi"), "hi"},
		{[]int{1, 2}, "[1,2]"},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, tc := range tests {
		got, err := encodeArg(tc.in)
		if err != nil {
			t.Errorf("encodeArg(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("encodeArg(%v): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResponseTooLarge(t *testing.T) {
	defer func(n int64) { maxResponseBytes = n }(maxResponseBytes)
	maxResponseBytes = 8

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `"`+strings.Repeat("x", 16)+`"`)
	}))
	defer srv.Close()

	s := &Stub{cfg: newConfig(nil), name: "f", url: srv.URL + "/m/f/"}
	if _, err := s.Call(context.Background()); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("Call: got %v, want %v", err, ErrResponseTooLarge)
	}

	maxResponseBytes = 18
	res, err := s.Call(context.Background())
	if err != nil {
		t.Fatalf("Call at the limit: %v", err)
	}
	if got := len(res.Bytes()); got != 18 {
		t.Errorf("Bytes: got %d bytes, want 18", got)
	}
}
