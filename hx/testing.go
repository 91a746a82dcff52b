package hx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// TestResult is the recorded outcome of a rendered component or an action.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	TriggerData     map[string]map[string]any
	Flashes         []Flash
	RedirectURL     string
}

// TestRender runs Hydrate and Render on props, without HTTP mechanics.
func TestRender[P any](comp Lifecycle[P], props P) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), comp, props)
}

// TestRenderWithContext is TestRender with a caller-provided context.
func TestRenderWithContext[P any](ctx context.Context, comp Lifecycle[P], props P) (*TestResult, error) {
	if err := comp.Hydrate(ctx, &props); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := comp.Render(ctx, props).Render(ctx, &buf); err != nil {
		return nil, err
	}

	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
		Flashes:    parseFlashesFromHTML(buf.String()),
	}, nil
}

// TestAction sends a request through comp.HXServeHTTP with the HX-Request
// header set, and records the response.
func TestAction(comp HXComponent, actionURL, method string, formData map[string]string) (*TestResult, error) {
	return NewTestRequest(method, actionURL).WithFormValues(formData).Execute(comp)
}

// TestGet is TestAction with GET.
func TestGet(comp HXComponent, url string) (*TestResult, error) {
	return TestAction(comp, url, http.MethodGet, nil)
}

// TestPost is TestAction with POST.
func TestPost(comp HXComponent, url string, formData map[string]string) (*TestResult, error) {
	return TestAction(comp, url, http.MethodPost, formData)
}

// TestCall executes an Action built by Component.Call or Refresh. Its
// hx-vals are sent along with formData.
func TestCall(comp HXComponent, a *Action, formData map[string]string) (*TestResult, error) {
	req := NewTestRequest(a.Method(), a.URL())
	for k, v := range a.vals {
		if s, ok := v.(string); ok {
			req.WithFormData(k, s)
		}
	}
	return req.WithFormValues(formData).Execute(comp)
}

func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	return slices.ContainsFunc(substrs, func(s string) bool {
		return strings.Contains(r.HTML, s)
	})
}

// HasEvent reports whether event was emitted.
func (r *TestResult) HasEvent(event string) bool {
	return slices.Contains(r.TriggeredEvents, event)
}

// EventData returns the detail sent with event.
func (r *TestResult) EventData(event string) (map[string]any, bool) {
	data, ok := r.TriggerData[event]
	return data, ok
}

func (r *TestResult) HasFlash(level, message string) bool {
	return slices.Contains(r.Flashes, Flash{Level: level, Message: message})
}

func (r *TestResult) HasFlashLevel(level string) bool {
	return slices.ContainsFunc(r.Flashes, func(f Flash) bool { return f.Level == level })
}

func (r *TestResult) WasRedirected() bool        { return r.RedirectURL != "" }
func (r *TestResult) RedirectedTo(u string) bool { return r.RedirectURL == u }
func (r *TestResult) IsOK() bool                 { return r.StatusCode == http.StatusOK }
func (r *TestResult) HasStatus(code int) bool    { return r.StatusCode == code }

func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// parseTriggerHeader reads both header forms: a comma separated list of
// names, or a JSON object keyed by event name.
func parseTriggerHeader(trigger string) ([]string, map[string]map[string]any) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil, nil
	}

	if strings.HasPrefix(trigger, "{") {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &raw); err != nil {
			return nil, nil
		}
		events := make([]string, 0, len(raw))
		data := make(map[string]map[string]any, len(raw))
		for name, detail := range raw {
			events = append(events, name)
			var m map[string]any
			if json.Unmarshal(detail, &m) == nil {
				data[name] = m
			}
		}
		slices.Sort(events)
		return events, data
	}

	var events []string
	for _, p := range strings.Split(trigger, ",") {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events, nil
}

// parseFlashesFromHTML extracts toasts rendered by RenderFlashesOOB.
func parseFlashesFromHTML(html string) []Flash {
	const prefix = `<div class="toast toast-`
	var flashes []Flash

	rest := html
	for {
		start := strings.Index(rest, prefix)
		if start == -1 {
			return flashes
		}
		rest = rest[start+len(prefix):]

		level, after, ok := strings.Cut(rest, `"`)
		if !ok {
			return flashes
		}
		_, after, ok = strings.Cut(after, ">")
		if !ok {
			return flashes
		}
		message, after, ok := strings.Cut(after, "</div>")
		if !ok {
			return flashes
		}
		flashes = append(flashes, Flash{Level: level, Message: message})
		rest = after
	}
}

// TestRequestBuilder builds requests with fine-grained control:
//
//	result, err := hx.NewTestRequest(http.MethodPost, url).
//	    WithFormData("quantity", "3").
//	    WithContext(ctx).
//	    Execute(comp)
type TestRequestBuilder struct {
	method   string
	url      string
	formData url.Values
	headers  map[string]string
	ctx      context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      url,
		formData: make(map[string][]string),
		headers:  map[string]string{"HX-Request": "true"},
		ctx:      context.Background(),
	}
}

func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData.Set(key, value)
	return b
}

func (b *TestRequestBuilder) WithFormValues(data map[string]string) *TestRequestBuilder {
	for k, v := range data {
		b.formData.Set(k, v)
	}
	return b
}

func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute runs the request against comp.
func (b *TestRequestBuilder) Execute(comp HXComponent) (*TestResult, error) {
	target := b.url
	var body *strings.Reader
	if b.method == http.MethodGet || b.method == http.MethodHead {
		body = strings.NewReader("")
		if len(b.formData) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + b.formData.Encode()
		}
	} else {
		body = strings.NewReader(b.formData.Encode())
	}

	req := httptest.NewRequest(b.method, target, body).WithContext(b.ctx)
	if body.Len() > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	comp.HXServeHTTP(rec, req)

	result := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	result.TriggeredEvents, result.TriggerData = parseTriggerHeader(rec.Header().Get("HX-Trigger"))
	result.Flashes = parseFlashesFromHTML(result.HTML)
	return result, nil
}

// MockHydrater wraps a component with a custom hydration function, to
// inject data without the component's real dependencies.
type MockHydrater[P any] struct {
	Component    Lifecycle[P]
	HydrateFunc  func(ctx context.Context, props *P) error
	hydrateProps *P
}

// NewMockHydrater creates a MockHydrater that wraps a component.
func NewMockHydrater[P any](comp Lifecycle[P], hydrateFn func(ctx context.Context, props *P) error) *MockHydrater[P] {
	return &MockHydrater[P]{Component: comp, HydrateFunc: hydrateFn}
}

func (m *MockHydrater[P]) Hydrate(ctx context.Context, props *P) error {
	m.hydrateProps = props
	return m.HydrateFunc(ctx, props)
}

func (m *MockHydrater[P]) Render(ctx context.Context, props P) templ.Component {
	return m.Component.Render(ctx, props)
}

// LastHydratedProps returns the props of the last Hydrate call.
func (m *MockHydrater[P]) LastHydratedProps() *P {
	return m.hydrateProps
}
