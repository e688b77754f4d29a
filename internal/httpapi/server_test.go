package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"authd/internal/auth"
	"authd/internal/manager"
	"authd/pkg/types"
)

type mockService struct {
	status   types.StoreStatus
	ready    bool
	admitErr error
	loginErr error
	resp     types.LoginResponse
	panicMsg string
	// waiting, when set, makes Admit block until ctx ends and is closed once
	// Admit has been entered.
	waiting chan struct{}

	admits int32
	logins int32
	last   types.LoginRequest
}

func (m *mockService) Status() types.StoreStatus { return m.status }
func (m *mockService) Ready() bool               { return m.ready }
func (m *mockService) Admit(ctx context.Context, requiresStore bool) error {
	atomic.AddInt32(&m.admits, 1)
	if m.waiting != nil {
		close(m.waiting)
		<-ctx.Done()
		return ctx.Err()
	}
	return m.admitErr
}
func (m *mockService) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	atomic.AddInt32(&m.logins, 1)
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	m.last = req
	if m.loginErr != nil {
		return types.LoginResponse{}, m.loginErr
	}
	return m.resp, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v body=%q", err, w.Body.String())
	}
	return body
}

func TestRootHandler(t *testing.T) {
	svc := &mockService{status: types.StoreStatus{Phase: "connecting", HasConfiguredTarget: true}}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.RootResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Message != "API is running" || body.MongoStatus != "disconnected" || body.Store.Phase != "connecting" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if svc.admits != 0 {
		t.Fatalf("GET / must not pass the gate")
	}
}

func TestRootHandler_Connected(t *testing.T) {
	svc := &mockService{status: types.StoreStatus{Phase: "connected"}}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var body types.RootResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.MongoStatus != "connected" {
		t.Fatalf("mongoStatus=%q", body.MongoStatus)
	}
}

func TestLogin_Success(t *testing.T) {
	svc := &mockService{resp: types.LoginResponse{Message: "Login successful", Token: "dummy-token"}}
	w := postLogin(t, NewMux(svc), `{"email":"a@b.c","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Token != "dummy-token" {
		t.Fatalf("token=%q", body.Token)
	}
	if svc.admits != 1 || svc.last.Email != "a@b.c" {
		t.Fatalf("admits=%d last=%+v", svc.admits, svc.last)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockService{loginErr: auth.ErrInvalidCredentials}
	w := postLogin(t, NewMux(svc), `{"email":"a@b.c","password":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Invalid credentials" || body.Error != "" {
		t.Fatalf("body=%+v", body)
	}
}

func TestLogin_GateRejects(t *testing.T) {
	svc := &mockService{admitErr: manager.ErrNotReady(errors.New("dial refused"))}
	w := postLogin(t, NewMux(svc), `{"email":"a@b.c","password":"pw"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Database not ready, please try again" {
		t.Fatalf("body=%+v", body)
	}
	if svc.logins != 0 {
		t.Fatalf("handler must not run when the gate rejects")
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}

func TestLogin_UnsupportedMediaType(t *testing.T) {
	svc := &mockService{}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLogin_MissingContentType(t *testing.T) {
	svc := &mockService{}
	w := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"pw"}`)))
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Content-Type must be application/json" {
		t.Fatalf("message=%q", body.Message)
	}
	if atomic.LoadInt32(&svc.logins) != 0 {
		t.Fatal("login ran without a JSON content type")
	}
}

func TestLogin_BadJSON(t *testing.T) {
	svc := &mockService{}
	w := postLogin(t, NewMux(svc), `{"email":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "Invalid request body" {
		t.Fatalf("body=%+v", body)
	}
	if svc.logins != 0 {
		t.Fatalf("login called on bad body")
	}
}

func TestLogin_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(16)
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	svc := &mockService{}
	w := postLogin(t, NewMux(svc), `{"email":"someone@example.com","password":"long enough"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLogin_ServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not ready", manager.ErrNotReady(nil), http.StatusServiceUnavailable, "Database not ready, please try again"},
		{"configuration", manager.ErrConfiguration("no target"), http.StatusInternalServerError, "Internal Server Error"},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot, "teapot"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{loginErr: tc.err}
			w := postLogin(t, NewMux(svc), `{"email":"a@b.c","password":"pw"}`)
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d", w.Code, tc.code)
			}
			if body := decodeError(t, w); body.Message != tc.msg {
				t.Fatalf("message=%q want %q", body.Message, tc.msg)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	r := NewMux(&mockService{})
	for _, path := range []string{"/nope", "/api/login"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s status=%d", path, w.Code)
		}
		if body := decodeError(t, w); body.Message != "Route not found" {
			t.Fatalf("%s body=%+v", path, body)
		}
	}
}

func TestMethodNotAllowedIsNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "connecting") {
		t.Fatalf("readyz status=%d body=%q", w.Code, w.Body.String())
	}
	svc.ready = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}
}

func TestSecurityHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff=%q", got)
	}
}

func TestLogin_BaseContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	t.Cleanup(func() { SetBaseContext(nil) })
	cancel()
	svc := &mockService{loginErr: context.Canceled}
	w := postLogin(t, NewMux(svc), `{"email":"a@b.c","password":"pw"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After=%q", got)
	}
	if body := decodeError(t, w); body.Message != msgNotReady {
		t.Fatalf("message=%q", body.Message)
	}
}

func TestGate_RequestCanceledWhileWaiting(t *testing.T) {
	svc := &mockService{waiting: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"pw"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	go func() {
		<-svc.waiting
		cancel()
	}()
	NewMux(svc).ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
	if atomic.LoadInt32(&svc.logins) != 0 {
		t.Fatal("login ran after the gate gave up")
	}
}

func TestGate_ShutdownWhileWaiting(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(nil) })
	svc := &mockService{waiting: make(chan struct{})}
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()
	go func() {
		<-svc.waiting
		cancel()
	}()

	resp, err := http.Post(srv.URL+"/login", "application/json", strings.NewReader(`{"email":"a@b.c","password":"pw"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var body types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Message != msgNotReady {
		t.Fatalf("message=%q", body.Message)
	}
}
