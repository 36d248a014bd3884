// Package api holds the modules served by cmd/bridge.
package api

import (
	"context"
	"net/http"

	"github.com/joeydtaylor/steeze-bridge/pkg/core"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
)

// Util is served as /util/{strcat,use_request}.
var Util = module.New("util").
	Export("strcat", Strcat, "val1", "val2").
	Export("use_request", UseRequest, "arg1")

func init() { module.MustRegister(Util) }

// Strcat returns val1 followed by val2.
func Strcat(val1, val2 string) string { return val1 + val2 }

// RequestInfo is the result of UseRequest.
type RequestInfo struct {
	Message string `json:"message"`
	Arg1    string `json:"arg1"`
}

// UseRequest answers differently depending on the HTTP method it was called
// with.
func UseRequest(ctx context.Context, arg1 string) (RequestInfo, error) {
	call, ok := core.CallFrom(ctx)
	if !ok {
		return RequestInfo{}, core.NewError(http.StatusInternalServerError, "no request in context", nil)
	}
	if call.Request.Method == http.MethodGet {
		return RequestInfo{Message: "GET test1", Arg1: arg1}, nil
	}
	return RequestInfo{Message: "POST test1", Arg1: arg1}, nil
}
