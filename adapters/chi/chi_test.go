package hxchi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ccpricing/hx"
)

type pingProps struct {
	N int `msgpack:"n"`
}

type ping struct {
	*hx.Component[pingProps]
}

func newPing() *ping {
	c := &ping{Component: hx.New[pingProps]("ping")}
	c.Bind(c)
	c.Action("bump", func(ctx context.Context, props pingProps, r *http.Request) hx.Result[pingProps] {
		props.N++
		return hx.OK(props)
	})
	return c
}

func (c *ping) Hydrate(context.Context, *pingProps) error { return nil }

func (c *ping) Render(_ context.Context, props pingProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "pong")
		return err
	})
}

func TestMount(t *testing.T) {
	reg := hx.NewRegistry([]byte("chi-test-key"))
	p := newPing()
	reg.Add(p)

	r := chi.NewRouter()
	Mount(r, reg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p.Refresh(pingProps{}).URL(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, p.Prefix()+"/bump", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, hx.ScriptPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoute(t *testing.T) {
	reg := hx.NewRegistry([]byte("chi-test-key"))
	p := newPing()
	reg.Add(p)

	r := chi.NewRouter()
	r.Route("/app", func(r chi.Router) {
		Route(r, "/app", reg)
	})

	req := httptest.NewRequest(http.MethodPost, "/app"+p.Prefix()+"/bump", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
