package handlers

import (
	"net/http"
	"sync"
)

// Reloadable serves through a handler that can be replaced while serving.
type Reloadable struct {
	mu sync.RWMutex
	h  http.Handler
}

func NewReloadable(h http.Handler) *Reloadable {
	return &Reloadable{h: h}
}

// Swap replaces the handler used for new requests.
func (r *Reloadable) Swap(h http.Handler) {
	r.mu.Lock()
	r.h = h
	r.mu.Unlock()
}

func (r *Reloadable) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.h
	r.mu.RUnlock()

	// Development server: never let the browser cache a rebuilt page.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.ServeHTTP(w, req)
}
