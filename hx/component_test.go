package hx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

type counterProps struct {
	Count int    `msgpack:"c"`
	Label string `msgpack:"-"`
}

type counter struct {
	*Component[counterProps]
	hydrateErr error
}

func newCounter() *counter {
	c := &counter{Component: New[counterProps]("counter")}
	c.Bind(c)
	c.Action("increment", c.handleIncrement)
	c.Action("set", c.handleSet).Method(http.MethodPut)
	c.Action("emit", c.handleEmit)
	c.Action("fail", c.handleFail)
	return c
}

func (c *counter) Hydrate(ctx context.Context, props *counterProps) error {
	props.Label = "count"
	return c.hydrateErr
}

func (c *counter) Render(ctx context.Context, props counterProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span id="counter">%s=%d</span>`, props.Label, props.Count)
		return err
	})
}

func (c *counter) handleIncrement(ctx context.Context, props counterProps, r *http.Request) Result[counterProps] {
	props.Count++
	return OK(props).Flash(FlashSuccess, "incremented")
}

func (c *counter) handleSet(ctx context.Context, props counterProps, r *http.Request) Result[counterProps] {
	n, err := strconv.Atoi(r.FormValue("value"))
	if err != nil {
		return Err(props, fmt.Errorf("%w: value", ErrInvalidFormat))
	}
	props.Count = n
	return OK(props)
}

func (c *counter) handleEmit(ctx context.Context, props counterProps, r *http.Request) Result[counterProps] {
	return Skip[counterProps]().Trigger("counter:changed", map[string]any{"count": props.Count})
}

func (c *counter) handleFail(ctx context.Context, props counterProps, r *http.Request) Result[counterProps] {
	return Err(props, errors.New("boom"))
}

func mountedCounter(t *testing.T) (*counter, *Registry) {
	t.Helper()
	reg := NewRegistry([]byte("test-key"))
	c := newCounter()
	reg.Add(c)
	return c, reg
}

func TestComponent_DefaultRender(t *testing.T) {
	c, _ := mountedCounter(t)

	result, err := TestCall(c, c.Refresh(counterProps{Count: 4}), nil)
	if err != nil {
		t.Fatalf("TestCall() error = %v", err)
	}
	if !result.IsOK() {
		t.Fatalf("status = %d, body = %s", result.StatusCode, result.HTML)
	}
	if !result.HTMLContains("count=4") {
		t.Errorf("HTML = %s, want hydrated label and count", result.HTML)
	}
	if ct := result.GetHeader("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestComponent_ActionRendersWithFlash(t *testing.T) {
	c, _ := mountedCounter(t)

	result, err := TestCall(c, c.Call("increment", counterProps{Count: 1}), nil)
	if err != nil {
		t.Fatalf("TestCall() error = %v", err)
	}
	if !result.HTMLContains("count=2") {
		t.Errorf("HTML = %s, want count=2", result.HTML)
	}
	if !result.HasFlash(FlashSuccess, "incremented") {
		t.Errorf("Flashes = %v", result.Flashes)
	}
}

func TestComponent_MethodOverride(t *testing.T) {
	c, _ := mountedCounter(t)

	a := c.Call("set", counterProps{})
	if a.Method() != http.MethodPut {
		t.Fatalf("Method() = %s, want PUT", a.Method())
	}

	result, _ := TestCall(c, a, map[string]string{"value": "9"})
	if !result.HTMLContains("count=9") {
		t.Errorf("HTML = %s, want count=9", result.HTML)
	}

	result, _ = TestPost(c, c.Prefix()+"/set", nil)
	if !result.HasStatus(http.StatusMethodNotAllowed) {
		t.Errorf("status = %d, want 405", result.StatusCode)
	}
	if result.GetHeader("Allow") != http.MethodPut {
		t.Errorf("Allow = %q", result.GetHeader("Allow"))
	}
}

func TestComponent_SkipWithTrigger(t *testing.T) {
	c, _ := mountedCounter(t)

	result, _ := TestCall(c, c.Call("emit", counterProps{Count: 7}), nil)
	if !result.IsOK() {
		t.Fatalf("status = %d", result.StatusCode)
	}
	if result.HTML != "" {
		t.Errorf("Skip should not render, got %s", result.HTML)
	}
	data, ok := result.EventData("counter:changed")
	if !ok {
		t.Fatalf("TriggeredEvents = %v", result.TriggeredEvents)
	}
	if data["count"] != float64(7) {
		t.Errorf("event data = %v", data)
	}
}

func TestComponent_Errors(t *testing.T) {
	c, reg := mountedCounter(t)

	var seen error
	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		seen = err
		DefaultErrorHandler(w, r, err)
	}

	tests := []struct {
		name   string
		run    func() (*TestResult, error)
		status int
		is     error
	}{
		{
			name:   "unknown action",
			run:    func() (*TestResult, error) { return TestPost(c, c.Prefix()+"/nope", nil) },
			status: http.StatusNotFound,
			is:     ErrNotFound,
		},
		{
			name: "tampered props",
			run: func() (*TestResult, error) {
				return TestPost(c, c.Prefix()+"/increment", map[string]string{"p": "AAAA.AAAA"})
			},
			status: http.StatusBadRequest,
			is:     ErrSignatureInvalid,
		},
		{
			name:   "handler error",
			run:    func() (*TestResult, error) { return TestCall(c, c.Call("fail", counterProps{}), nil) },
			status: http.StatusInternalServerError,
		},
		{
			name: "invalid form value",
			run: func() (*TestResult, error) {
				return TestCall(c, c.Call("set", counterProps{}), map[string]string{"value": "x"})
			},
			status: http.StatusBadRequest,
			is:     ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			result, _ := tt.run()
			if !result.HasStatus(tt.status) {
				t.Errorf("status = %d, want %d", result.StatusCode, tt.status)
			}
			if seen == nil {
				t.Fatal("OnError was not called")
			}
			if tt.is != nil && !errors.Is(seen, tt.is) {
				t.Errorf("error = %v, want %v", seen, tt.is)
			}
		})
	}
}

func TestComponent_HydrationError(t *testing.T) {
	c, _ := mountedCounter(t)
	c.hydrateErr = ErrNotFound

	result, _ := TestCall(c, c.Refresh(counterProps{}), nil)
	if !result.HasStatus(http.StatusNotFound) {
		t.Errorf("status = %d, want 404 for wrapped ErrNotFound", result.StatusCode)
	}
}

func TestComponent_Tokens(t *testing.T) {
	c, reg := mountedCounter(t)

	other := New[counterProps]("other")
	reg.Add(other)

	token, err := c.Token(counterProps{Count: 3})
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	var got counterProps
	if err := other.ReadToken(token, &got); err != nil {
		t.Fatalf("ReadToken() error = %v", err)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}

	if err := other.ReadToken("forged", &got); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ReadToken(forged) = %v, want ErrInvalidFormat", err)
	}
}

func TestComponent_Sensitive(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	c := newCounter()
	c.Sensitive()
	reg.Add(c)

	if !c.IsSensitive() {
		t.Fatal("IsSensitive() = false")
	}

	encoded, err := c.EncodeProps(counterProps{Count: 7})
	if err != nil {
		t.Fatalf("EncodeProps() error = %v", err)
	}
	var got counterProps
	if err := c.Encoder().Decode(encoded, false, &got); err == nil {
		t.Error("encrypted props should not verify as signed")
	}

	result, err := TestCall(c, c.Refresh(counterProps{Count: 7}), nil)
	if err != nil {
		t.Fatalf("TestCall() error = %v", err)
	}
	if !result.HTMLContains("count=7") {
		t.Errorf("HTML = %s, want decrypted props", result.HTML)
	}
}

func TestComponent_Unmounted(t *testing.T) {
	c := newCounter()

	if _, err := c.Token(1); err == nil {
		t.Error("Token() without encoder should fail")
	}
	if _, ok := c.Call("increment", counterProps{}).Attrs()["hx-vals"]; ok {
		t.Error("unmounted component should not produce props")
	}
}

func TestComponent_CallUnknownPanics(t *testing.T) {
	c := newCounter()
	defer func() {
		if recover() == nil {
			t.Error("Call with unknown action should panic")
		}
	}()
	c.Call("missing", counterProps{})
}

func TestComponent_Defer(t *testing.T) {
	c, _ := mountedCounter(t)
	placeholder := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="skeleton"></div>`)
		return err
	})

	var sb strings.Builder
	if err := c.Defer(counterProps{}, placeholder).Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	html := sb.String()
	for _, want := range []string{`hx-get="` + c.Prefix() + `/?p=`, `hx-trigger="load"`, `class="skeleton"`} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}
