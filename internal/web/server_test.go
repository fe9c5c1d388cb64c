package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hbnb/internal/infra/persistence/memory"
	"hbnb/internal/metrics"
	"hbnb/pkg/domain"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, string(body)
}

func TestRoutes(t *testing.T) {
	h := NewRouter(nil)
	cases := []struct {
		path string
		want string
	}{
		{"/", "Hello HBNB!"},
		{"/hbnb", "HBNB"},
		{"/hbnb/", "HBNB"},
		{"/c/is_fun", "C is fun"},
		{"/c/is_fun/", "C is fun"},
		{"/python", "Python is cool"},
		{"/python/", "Python is cool"},
		{"/python/is_magic", "Python is magic"},
		{"/number/89", "89 is a number"},
	}
	for _, tc := range cases {
		code, body := get(t, h, tc.path)
		if code != http.StatusOK || body != tc.want {
			t.Fatalf("%s: got %d %q want %q", tc.path, code, body, tc.want)
		}
	}
}

func TestNumberRoutesRejectNonIntegers(t *testing.T) {
	h := NewRouter(nil)
	for _, path := range []string{"/number/abc", "/number/1.5", "/number_template/x", "/c"} {
		if code, _ := get(t, h, path); code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, code)
		}
	}
}

func TestNumberTemplate(t *testing.T) {
	code, body := get(t, NewRouter(nil), "/number_template/9")
	if code != http.StatusOK || !strings.Contains(body, "<H1>Number: 9</H1>") || !strings.Contains(body, "<TITLE>HBNB</TITLE>") {
		t.Fatalf("unexpected page %d %q", code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	store := memory.NewStore()
	reg := domain.DefaultRegistry()
	user, _ := reg.Instantiate(domain.ClassUser)
	store.New(user)
	m := metrics.New()
	if err := m.RegisterObjects(store, reg.Classes()); err != nil {
		t.Fatalf("register: %v", err)
	}
	code, body := get(t, NewRouter(m), "/metrics")
	if code != http.StatusOK || !strings.Contains(body, `hbnb_objects{class="User"} 1`) {
		t.Fatalf("unexpected metrics %d %q", code, body)
	}
	if code, _ := get(t, NewRouter(nil), "/metrics"); code != http.StatusNotFound {
		t.Fatalf("metrics must be absent without a registry, got %d", code)
	}
}
