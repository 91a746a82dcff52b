package hx

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Hydrater reconstructs rich objects from the lean values carried in props.
// It runs once per request, before any handler, including the default
// render.
type Hydrater[P any] interface {
	Hydrate(ctx context.Context, props *P) error
}

// Renderer produces the component markup from hydrated props. It is called
// for GET requests and after handlers returning OK.
type Renderer[P any] interface {
	Render(ctx context.Context, props P) templ.Component
}

// Lifecycle is what a component binds to its embedded *Component[P].
type Lifecycle[P any] interface {
	Hydrater[P]
	Renderer[P]
}

// HXComponent is anything the registry can mount.
type HXComponent interface {
	HXPrefix() string
	HXServeHTTP(w http.ResponseWriter, r *http.Request)
}

// Handler handles a named action.
type Handler[P any] func(ctx context.Context, props P, r *http.Request) Result[P]

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// mountable is satisfied through the embedded *Component[P].
type mountable interface {
	mount(enc *Encoder, onError ErrorHandler)
}
