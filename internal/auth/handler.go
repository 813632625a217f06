package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=auth_test

type sessionService interface {
	Login(ctx context.Context, password string, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handler struct {
	sessions       sessionService
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(sessions sessionService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		sessions:       sessions,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// SetupRoutes registers login and logout. loginMiddlewares wrap the login route only (e.g. rate limiting).
func (handler *Handler) SetupRoutes(r *mux.Router, loginMiddlewares ...mux.MiddlewareFunc) {
	var login http.Handler = http.HandlerFunc(handler.HandleLogin)
	for i := len(loginMiddlewares) - 1; i >= 0; i-- {
		login = loginMiddlewares[i](login)
	}

	r.Handle("/api/auth/login", login).Methods("POST", "OPTIONS").Name("login")
	r.HandleFunc("/api/auth/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
}

// TokenFromRequest extracts the token from an "Authorization: Bearer <token>" header.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Errorf("login, unmarshal json params: %s", err)
		handler.loginResult("bad_request")
		handler.writeLoginResponse(w, LoginResponse{Message: "Invalid request body"}, http.StatusBadRequest)
		return
	}

	if loginReq.Password == "" {
		handler.loginResult("bad_request")
		handler.writeLoginResponse(w, LoginResponse{Message: "Password is required"}, http.StatusBadRequest)
		return
	}

	token, err := handler.sessions.Login(ctx, loginReq.Password, handler.now())
	if err != nil {
		if errors.Is(err, ErrWrongPassword) {
			log.Tracef("[login] wrong password from %s", pkg.ReadUserIP(r))
			span.SetStatus(codes.Error, "wrong-password")
			handler.loginResult("wrong_password")
			handler.writeLoginResponse(w, LoginResponse{Message: "Invalid password"}, http.StatusUnauthorized)
			return
		}

		log.Errorf("login failed, create session: %s", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create-session")
		handler.loginResult("error")
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	handler.loginResult("success")
	handler.writeLoginResponse(w, LoginResponse{
		Token:   token,
		Success: true,
		Message: "Login successful",
	}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	token := TokenFromRequest(r)
	if token == "" {
		pkg.WriteResponse(w, pkg.ContentType.JSON, `{"message":"No token provided"}`, http.StatusUnauthorized)
		return
	}

	if err := handler.sessions.Logout(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			pkg.WriteResponse(w, pkg.ContentType.JSON, `{"message":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		log.Errorf("logout failed: %s", err)
		span.RecordError(err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success":true,"message":"Logged out"}`)
}

func (handler *Handler) loginResult(result string) {
	if handler.metricsManager == nil {
		return
	}
	handler.metricsManager.CounterLogins.WithLabelValues(result).Inc()
}

func (handler *Handler) writeLoginResponse(w http.ResponseWriter, resp LoginResponse, statusCode int) {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal login response: %s", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, statusCode)
}
