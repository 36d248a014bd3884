package logger

import (
	"net/http"
	"strings"
)

const maxLoggedBody = 1 << 16 // 64 KiB

// Only log small JSON request bodies on allowlisted routes.
func (m *Middleware) shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost {
		return false
	}
	if len(body) == 0 || len(body) > maxLoggedBody {
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return false
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	m.mu.RLock()
	_, ok := m.bodyPaths[path]
	m.mu.RUnlock()
	return ok
}

// AddBodyLogPaths extends the allowlist of paths whose JSON bodies are logged.
func (m *Middleware) AddBodyLogPaths(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bodyPaths == nil {
		m.bodyPaths = map[string]struct{}{}
	}
	for _, p := range paths {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p != "" {
			m.bodyPaths[p] = struct{}{}
		}
	}
}
