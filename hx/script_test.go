package hx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScriptHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ScriptHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ScriptPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/javascript") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), `defineExtension("hxcmp"`) {
		t.Error("body does not define the extension")
	}
}

func TestScript(t *testing.T) {
	var sb strings.Builder
	if err := Script().Render(t.Context(), &sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), ScriptPath) {
		t.Errorf("Script() = %s", sb.String())
	}
}
