// Package hxecho mounts hx components on an Echo instance or group.
//
//	e := echo.New()
//	reg := hxecho.NewRegistry(hxecho.WithKey(key))
//	components.Init(sessions, links, reg)
//	hxecho.Mount(e, reg)
//
// Or behind a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	hxecho.MountGroup(g, "/app", reg)
package hxecho

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/ccpricing/hx"
)

// Option configures NewRegistry.
type Option func(*options)

type options struct {
	key []byte
}

// WithKey sets the props key of the registry. Without it, or with an empty
// key, a random key is generated: props then do not survive a restart.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// NewRegistry creates a registry for the given options.
func NewRegistry(opts ...Option) *hx.Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxecho: failed to generate random key: %v", err))
		}
	}
	return hx.NewRegistry(key)
}

// Mount serves the registry's components and the hxcmp extension on e.
func Mount(e *echo.Echo, reg *hx.Registry) {
	e.Any("/_c/*", echo.WrapHandler(reg.Handler()))
	e.GET(hx.ScriptPath, echo.WrapHandler(hx.ScriptHandler()))
}

// MountGroup serves the registry on g, whose path prefix is prefix. The
// prefix is stripped before dispatching to the components.
func MountGroup(g *echo.Group, prefix string, reg *hx.Registry) {
	g.Any("/_c/*", echo.WrapHandler(http.StripPrefix(prefix, reg.Handler())))
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxecho.Render(c, layout())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
