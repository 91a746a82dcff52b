// Package hxchi mounts hx components on a chi router.
//
//	r := chi.NewRouter()
//	hxchi.Mount(r, reg)
package hxchi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pthm/ccpricing/hx"
)

// Mount serves the registry's components and the hxcmp extension on r.
func Mount(r chi.Router, reg *hx.Registry) {
	r.Handle("/_c/*", reg.Handler())
	r.Get(hx.ScriptPath, hx.ScriptHandler().ServeHTTP)
}

// Route serves the registry under a sub-router sharing middlewares:
//
//	r.Route("/app", func(r chi.Router) {
//	    r.Use(auth)
//	    hxchi.Route(r, "/app", reg)
//	})
func Route(r chi.Router, prefix string, reg *hx.Registry) {
	r.Handle("/_c/*", http.StripPrefix(prefix, reg.Handler()))
}
