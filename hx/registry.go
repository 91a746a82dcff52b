package hx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Registry mounts components and routes requests to them.
type Registry struct {
	mu         sync.RWMutex
	mux        *http.ServeMux
	encoder    *Encoder
	components map[string]HXComponent

	// OnError writes the response of failed requests. It is read at request
	// time, so it can be replaced after components are added.
	OnError ErrorHandler
}

// NewRegistry creates a registry whose encoder uses key.
func NewRegistry(key []byte) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hx: failed to create encoder: %v", err))
	}

	return &Registry{
		mux:        http.NewServeMux(),
		encoder:    enc,
		components: make(map[string]HXComponent),
		OnError:    DefaultErrorHandler,
	}
}

// DefaultErrorHandler maps the sentinel errors onto status codes.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case IsBadRequest(err):
		http.Error(w, "Bad request", http.StatusBadRequest)
	case errors.Is(err, ErrMethodNotAllowed):
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// Encoder returns the registry's encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers components. It panics on prefix collisions.
func (reg *Registry) Add(components ...HXComponent) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, comp := range components {
		prefix := comp.HXPrefix()
		if _, exists := reg.components[prefix]; exists {
			panic(fmt.Sprintf("hx: prefix collision for %q", prefix))
		}
		reg.components[prefix] = comp

		if m, ok := comp.(mountable); ok {
			m.mount(reg.encoder, reg.handleError)
		}
		reg.mux.HandleFunc(prefix+"/", comp.HXServeHTTP)
	}
}

// Len returns the number of registered components.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.components)
}

func (reg *Registry) handleError(w http.ResponseWriter, r *http.Request, err error) {
	onError := reg.OnError
	if onError == nil {
		onError = DefaultErrorHandler
	}
	onError(w, r, err)
}

// Handler returns the handler for component routes; mount it at "/_c/".
// Requests with mutating methods must carry HX-Request: true.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}
