package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authd/internal/manager"
	"authd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StoreStatus
	Ready() bool
	// Admit gates store-dependent routes; see manager.Manager.Admit.
	Admit(ctx context.Context, requiresStore bool) error
	Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error)
}

const (
	msgRunning       = "API is running"
	msgRouteNotFound = "Route not found"
	msgBadBody       = "Invalid request body"
)

// NewMux builds the router. Login is mounted at the root (/login); there is
// no /api prefix.
func NewMux(svc Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(corsHandler())
	}

	r.Get("/", h.root)
	r.With(RequireStore(svc)).Post("/login", h.login)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("connecting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, msgRouteNotFound, "")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

type handlers struct {
	svc Service
}

// root reports service and store status.
//
// @Summary      Service status
// @Description  Reports the environment and the database connection status. Never triggers a connect.
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.RootResponse
// @Router       / [get]
func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	mongo := "disconnected"
	if st.Phase == "connected" {
		mongo = "connected"
	}
	writeJSON(w, http.StatusOK, types.RootResponse{
		Message:     msgRunning,
		Environment: environment,
		MongoStatus: mongo,
		Store:       st,
	})
}

// login checks credentials and returns a placeholder token.
//
// @Summary      Log in
// @Description  Verifies email and password. Unknown email and wrong password return the same 400 response.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      types.LoginRequest  true  "Credentials"
// @Success      200      {object}  types.LoginResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /login [post]
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, msgBadBody, detail(err))
		return
	}

	start := time.Now()
	logStart(r, "login start")
	ctx, cancel := requestContext(r)
	defer cancel()
	if loginTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(loginTimeout)*time.Second)
		defer tcancel()
	}
	resp, err := h.svc.Login(ctx, req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			err = manager.ErrNotReady(err)
		}
		status := writeServiceError(w, r, err)
		loginOutcome(status)
		logEnd(r, "login end", status, start, err)
		return
	}
	loginOutcome(http.StatusOK)
	writeJSON(w, http.StatusOK, resp)
	logEnd(r, "login end", http.StatusOK, start, nil)
}

// RequireStore is the request gate middleware. Requests wait until the store
// is connected, or fail with 503 when it cannot be reached.
func RequireStore(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := requestContext(r)
			defer cancel()
			if err := svc.Admit(ctx, true); err != nil {
				if ctx.Err() != nil {
					// Client gone or server draining: the store was never reached.
					err = manager.ErrNotReady(err)
				}
				status := writeServiceError(w, r, err)
				logEnd(r, "gate rejected", status, time.Time{}, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
