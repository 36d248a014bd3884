// core/definition.go
package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
)

// definitionHandler serves a module definition computed once at registration.
type definitionHandler struct {
	def module.Definition
}

func (h definitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := codec.Negotiate(r.Header.Get("Accept"))
	out, err := c.Marshal(h.def)
	if err != nil {
		writeError(w, NewError(http.StatusInternalServerError, "definition could not be encoded", err))
		return
	}
	writeBody(w, c.ContentType(), out, http.StatusOK)
}
