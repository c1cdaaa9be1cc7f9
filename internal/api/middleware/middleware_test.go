package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/answer-question", nil))

	if called {
		t.Error("preflight reached the next handler")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_AllowList(t *testing.T) {
	h := CORS([]string{"https://notes.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for origin, want := range map[string]string{
		"https://notes.example": "https://notes.example",
		"https://evil.example":  "",
	} {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", origin, got, want)
		}
	}
}

func TestLogger_StoresContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := chimiddleware.RequestID(Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxzap.Info(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	entries := logs.FilterMessage("inside handler").All()
	if len(entries) != 1 {
		t.Fatalf("handler log entries = %d, want 1", len(entries))
	}
	if id, ok := entries[0].ContextMap()["request_id"].(string); !ok || id == "" {
		t.Errorf("request_id missing from context logger: %v", entries[0].ContextMap())
	}
	if n := logs.FilterMessage("Finish handle HTTP request").Len(); n != 1 {
		t.Errorf("finish entries = %d, want 1", n)
	}
}

func TestDeadline_SetsContextDeadlineWithoutWriting(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Deadline(2 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
		<-r.Context().Done()
	}))

	start := time.Now()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/answer-question", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	h.ServeHTTP(rec, req.WithContext(ctx))

	if !ok || deadline.Sub(start) > 2*time.Second+time.Second {
		t.Errorf("deadline = %v (set=%v)", deadline, ok)
	}
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("middleware wrote a response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestDeadline_ZeroDisables(t *testing.T) {
	var ok bool
	h := Deadline(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Error("zero budget should not set a deadline")
	}
}

func TestRecoverer_WritesJSON500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Logger(zap.New(core))(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/answer-question", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("body = %q, err = %v", rec.Body.String(), err)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Errorf("panic not logged: %v", logs.All())
	}
}

func TestRecoverer_RepanicsAbortHandler(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
