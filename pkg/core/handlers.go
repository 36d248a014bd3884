// core/handlers.go
package core

import (
	"net/http"
	"time"

	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
	hmetrics "github.com/joeydtaylor/steeze-bridge/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-bridge/pkg/signature"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// rpcSystem is recorded on every call span.
const rpcSystem = "steeze-bridge"

// exportHandler serves calls to one export through one HTTP method.
type exportHandler struct {
	module string
	fn     *signature.Func
	method string
	source func(*http.Request) (FieldSource, error)
	log    *zap.Logger
	tracer trace.Tracer
}

func querySource(r *http.Request) (FieldSource, error) { return QuerySource(r), nil }

func (h *exportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := hmetrics.OutcomeOK
	defer func() {
		hmetrics.ObserveCall(h.module, h.fn.Name(), h.method, outcome, time.Since(start))
	}()

	ctx, span := h.tracer.Start(r.Context(), h.module+"/"+h.fn.Name(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.RPCSystemKey.String(rpcSystem),
			semconv.RPCServiceKey.String(h.module),
			semconv.RPCMethodKey.String(h.fn.Name()),
			attribute.String("http.method", h.method),
		),
	)
	defer span.End()

	fail := func(kind string, err error) {
		outcome = kind
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.log.Warn("call failed",
			zap.String("module", h.module),
			zap.String("export", h.fn.Name()),
			zap.String("method", h.method),
			zap.String("outcome", kind),
			zap.Error(err),
		)
		writeError(w, err)
	}

	src, err := h.source(r)
	if err != nil {
		fail(hmetrics.OutcomeBadInput, err)
		return
	}
	args, err := Bind(h.fn, src)
	if err != nil {
		fail(hmetrics.OutcomeBadInput, err)
		return
	}

	call := &Call{Module: h.module, Export: h.fn.Name(), Request: r, Writer: w}
	res, err := h.fn.Call(withCall(ctx, call), args)
	if err != nil {
		fail(hmetrics.OutcomeError, err)
		return
	}

	c := codec.Negotiate(r.Header.Get("Accept"))
	out, err := c.Marshal(res)
	if err != nil {
		fail(hmetrics.OutcomeEncodeErr, NewError(http.StatusInternalServerError, "result could not be encoded", err))
		return
	}
	span.SetStatus(codes.Ok, "")
	writeBody(w, c.ContentType(), out, http.StatusOK)
}
