package app

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	hxchi "github.com/pthm/ccpricing/adapters/chi"
	hxecho "github.com/pthm/ccpricing/adapters/echo"
	"github.com/pthm/ccpricing/components"
	"github.com/pthm/ccpricing/hx"
	"github.com/pthm/ccpricing/internal/session"
)

const pageTitle = "Pricing estimation"

func newChiRouter(reg *hx.Registry, sessions *session.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.Logger,
	)

	hxchi.Mount(r, reg)
	r.Get("/health", healthCheck)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = hx.Render(w, r, pricingPage(r, sessions))
	})
	return r
}

func newEchoRouter(reg *hx.Registry, sessions *session.Manager) http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		echomw.Recover(),
		echomw.Logger(),
	)

	hxecho.Mount(e, reg)
	e.GET("/health", echo.WrapHandler(http.HandlerFunc(healthCheck)))
	e.GET("/", func(c echo.Context) error {
		return hxecho.Render(c, pricingPage(c.Request(), sessions))
	})
	return e
}

// pricingPage opens a session for the visitor and renders its page.
func pricingPage(r *http.Request, sessions *session.Manager) templ.Component {
	s := sessions.Open(r.Context())
	return components.Layout(pageTitle, components.C.Page.View(r.Context(), s.ID()))
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
