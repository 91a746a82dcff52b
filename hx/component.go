package hx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
)

var errNotMounted = errors.New("hx: component has no encoder, add it to a registry first")

type actionDef[P any] struct {
	name    string
	method  string
	handler Handler[P]
}

// Component is the base type embedded by user components. P is the props
// type; it is serialized with msgpack, so hydrated fields should carry the
// `msgpack:"-"` tag.
//
//	type Header struct {
//	    *hx.Component[HeaderProps]
//	    sessions *session.Manager
//	}
//
//	func NewHeader(sessions *session.Manager) *Header {
//	    c := &Header{Component: hx.New[HeaderProps]("header"), sessions: sessions}
//	    c.Bind(c)
//	    c.Action("change-currency", c.handleChangeCurrency)
//	    return c
//	}
//
// Each instance receives a URL prefix derived from its name and the source
// location of the New call.
type Component[P any] struct {
	name      string
	prefix    string
	sensitive bool
	actions   map[string]*actionDef[P]
	render    Handler[P]
	lifecycle Lifecycle[P]
	encoder   *Encoder
	onError   ErrorHandler
}

// New creates a component. Props are signed by default.
func New[P any](name string) *Component[P] {
	return &Component[P]{
		name:    name,
		prefix:  "/_c/" + name + "-" + componentHash(name, 1),
		actions: make(map[string]*actionDef[P]),
	}
}

// Bind attaches the Hydrate/Render implementation, usually the component
// embedding c.
func (c *Component[P]) Bind(l Lifecycle[P]) *Component[P] {
	c.lifecycle = l
	return c
}

// Sensitive switches props to AES-GCM encryption.
func (c *Component[P]) Sensitive() *Component[P] {
	c.sensitive = true
	return c
}

// Name returns the component's name.
func (c *Component[P]) Name() string {
	return c.name
}

// Prefix returns the URL prefix all actions are mounted under.
func (c *Component[P]) Prefix() string {
	return c.prefix
}

// HXPrefix implements HXComponent.
func (c *Component[P]) HXPrefix() string {
	return c.prefix
}

// IsSensitive returns whether the component uses encrypted props.
func (c *Component[P]) IsSensitive() bool {
	return c.sensitive
}

// Action registers a named handler, POST by default:
//
//	c.Action("delete-quantity", c.handleDelete)
//	c.Action("poll", c.handlePoll).Method(http.MethodGet)
func (c *Component[P]) Action(name string, handler Handler[P]) *ActionBuilder {
	def := &actionDef[P]{name: name, method: http.MethodPost, handler: handler}
	c.actions[name] = def
	return &ActionBuilder{method: &def.method}
}

// SetDefault replaces the handler of the default GET render, which
// otherwise returns OK(props).
func (c *Component[P]) SetDefault(handler Handler[P]) {
	c.render = handler
}

// Encoder returns the component encoder.
func (c *Component[P]) Encoder() *Encoder {
	return c.encoder
}

func (c *Component[P]) mount(enc *Encoder, onError ErrorHandler) {
	c.encoder = enc
	c.onError = onError
}

// EncodeProps encodes props the way URLs and hx-vals carry them.
func (c *Component[P]) EncodeProps(props P) (string, error) {
	if c.encoder == nil {
		return "", errNotMounted
	}
	return c.encoder.Encode(props, c.sensitive)
}

// Token signs v for use in event payloads. Receivers check it with
// ReadToken, so the client cannot forge the value.
func (c *Component[P]) Token(v any) (string, error) {
	if c.encoder == nil {
		return "", errNotMounted
	}
	return c.encoder.Encode(v, false)
}

// ReadToken verifies a token produced by Token (by any component sharing
// the same registry) and decodes it into v.
func (c *Component[P]) ReadToken(token string, v any) error {
	if c.encoder == nil {
		return errNotMounted
	}
	return WrapDecodeError(c.encoder.Decode(token, false, v))
}

// Call returns the request builder for a registered action. It panics on
// unknown names, which are programming errors.
func (c *Component[P]) Call(action string, props P) *Action {
	def, ok := c.actions[action]
	if !ok {
		panic(fmt.Sprintf("hx: %s has no action %q", c.name, action))
	}
	return c.buildAction(c.prefix+"/"+action, def.method, props)
}

// Refresh returns the request builder for the default render (GET).
//
//	c.Refresh(props).Every(time.Second).Attrs()
func (c *Component[P]) Refresh(props P) *Action {
	return c.buildAction(c.prefix+"/", http.MethodGet, props)
}

// Defer renders placeholder and loads the component right after the page
// has loaded.
func (c *Component[P]) Defer(props P, placeholder templ.Component) templ.Component {
	return lazyComponent(c.Refresh(props).URL(), placeholder, "load")
}

func (c *Component[P]) buildAction(path, method string, props P) *Action {
	encoded, err := c.EncodeProps(props)
	if err != nil {
		// The request still goes out; the handler sees zero props.
		return NewAction(path, method)
	}
	if method == http.MethodGet {
		return NewAction(path+"?p="+encoded, method)
	}
	return NewAction(path, method).Vals(map[string]any{"p": encoded})
}

// HXServeHTTP dispatches a request: decode props, Hydrate, run the handler
// and process its Result.
func (c *Component[P]) HXServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, c.prefix), "/")

	handler, method := c.render, http.MethodGet
	if handler == nil {
		handler = renderOK[P]
	}
	if name != "" {
		def, ok := c.actions[name]
		if !ok {
			c.fail(w, r, fmt.Errorf("%w: %s/%s", ErrNotFound, c.name, name))
			return
		}
		handler, method = def.handler, def.method
	}

	if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
		w.Header().Set("Allow", method)
		c.fail(w, r, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, r.Method, r.URL.Path))
		return
	}

	props, err := c.decodeProps(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	if c.lifecycle == nil {
		c.fail(w, r, fmt.Errorf("hx: %s has no lifecycle bound", c.name))
		return
	}

	ctx := r.Context()
	if err := c.lifecycle.Hydrate(ctx, &props); err != nil {
		c.fail(w, r, fmt.Errorf("%w: %s: %w", ErrHydrationFailed, c.name, err))
		return
	}

	c.handleResult(ctx, w, r, handler(ctx, props, r))
}

func (c *Component[P]) decodeProps(r *http.Request) (P, error) {
	var props P
	encoded := r.FormValue("p")
	if encoded == "" {
		return props, nil
	}
	if c.encoder == nil {
		return props, errNotMounted
	}
	if err := c.encoder.Decode(encoded, c.sensitive, &props); err != nil {
		return props, WrapDecodeError(err)
	}
	return props, nil
}

func (c *Component[P]) handleResult(ctx context.Context, w http.ResponseWriter, r *http.Request, res Result[P]) {
	if res.err != nil {
		c.fail(w, r, res.err)
		return
	}

	h := w.Header()
	for k, v := range res.headers {
		h.Set(k, v)
	}
	if trigger := BuildTriggerHeader(res.trigger, res.triggerData); trigger != "" {
		h.Set("HX-Trigger", trigger)
	}
	if res.triggerAfterSettle != "" {
		h.Set("HX-Trigger-After-Settle", res.triggerAfterSettle)
	}

	status := res.status
	if status == 0 {
		status = http.StatusOK
	}

	if res.redirect != "" {
		h.Set("HX-Redirect", res.redirect)
		w.WriteHeader(status)
		return
	}

	// Render into a buffer so that a failing template still reaches OnError.
	var buf bytes.Buffer
	if !res.skip {
		if err := c.lifecycle.Render(ctx, res.props).Render(ctx, &buf); err != nil {
			c.fail(w, r, err)
			return
		}
	}
	buf.WriteString(RenderFlashesOOB(res.flashes))

	if buf.Len() > 0 {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (c *Component[P]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.onError != nil {
		c.onError(w, r, err)
		return
	}
	DefaultErrorHandler(w, r, err)
}

func renderOK[P any](_ context.Context, props P, _ *http.Request) Result[P] {
	return OK(props)
}

// componentHash hashes the component name with the file:line of the caller,
// skip frames above componentHash.
func componentHash(name string, skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	input := name
	if ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

func lazyComponent(url string, placeholder templ.Component, trigger string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attrs := templ.Attributes{"hx-get": url, "hx-trigger": trigger, "hx-swap": string(SwapOuter)}
		if _, err := io.WriteString(w, "<div"); err != nil {
			return err
		}
		if err := WriteAttrs(w, attrs); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}
