package client

import (
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
)

// HTTPDoer is the part of *http.Client the proxies use.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option configures a Proxy.
type Option func(*config)

type config struct {
	doer   HTTPDoer
	method string
	codec  codec.Codec
	prefix string
}

func newConfig(opts []Option) config {
	c := config{
		doer:   http.DefaultClient,
		method: http.MethodGet,
		codec:  codec.JSON,
		prefix: manifest.DefaultDefinitionPrefix,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithHTTPClient sets the client used for every request. Default
// http.DefaultClient.
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *config) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithMethod selects how calls are sent: GET with a query string (default) or
// POST with a JSON object body.
func WithMethod(method string) Option {
	return func(c *config) {
		switch m := strings.ToUpper(method); m {
		case http.MethodGet, http.MethodPost:
			c.method = m
		}
	}
}

// WithCodec sets the response encoding requested through Accept.
func WithCodec(cd codec.Codec) Option {
	return func(c *config) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// WithDefinitionPrefix sets the path definitions are fetched from.
func WithDefinitionPrefix(p string) Option {
	return func(c *config) {
		p = "/" + strings.Trim(strings.TrimSpace(p), "/")
		if p != "/" {
			c.prefix = p
		}
	}
}
