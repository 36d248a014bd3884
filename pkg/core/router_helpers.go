package core

import (
	"errors"
	"net/http"
)

func writeBody(w http.ResponseWriter, contentType string, payload []byte, status int) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ee *Error
	if errors.As(err, &ee) {
		status = statusIf(ee.Status, status)
	}
	http.Error(w, err.Error(), status)
}

func statusIf(s, def int) int {
	if s >= 100 {
		return s
	}
	return def
}
