package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudyskybd/portfolio/internal/auth"
	"github.com/cloudyskybd/portfolio/internal/telemetry/metrics"
	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=admin_mocks_test.go -package=admin_test

type authService interface {
	Login(ctx context.Context, username, password string) (string, auth.Session, error)
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*auth.Session, error)
	Profile(ctx context.Context) (auth.Profile, error)
	UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (auth.Profile, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) (bool, error)
	RequestReset(ctx context.Context, email string) (bool, error)
	RedeemReset(ctx context.Context, token, newPassword string) (bool, error)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	Expiry        int64 `json:"expiry"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type redeemRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type Handler struct {
	authService    authService
	metricsManager *metrics.Manager
}

func NewHandler(authService authService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		authService:    authService,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the admin routes. limit wraps the routes open to anonymous callers
// (login and reset), it can be nil.
func (handler *Handler) SetupRoutes(router *mux.Router, limit mux.MiddlewareFunc) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	router.Handle("/a/login", limit(http.HandlerFunc(handler.handleLogin))).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/a/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")
	router.HandleFunc("/a/session", handler.handleSession).Methods("GET", "OPTIONS").Name("session")
	router.HandleFunc("/a/profile", handler.handleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")
	router.HandleFunc("/a/profile", handler.handleUpdateProfile).Methods("PUT").Name("update-profile")
	router.HandleFunc("/a/password", handler.handleChangePassword).Methods("POST", "OPTIONS").Name("change-password")
	router.Handle("/a/reset/request", limit(http.HandlerFunc(handler.handleResetRequest))).Methods("POST", "OPTIONS").Name("reset-request")
	router.Handle("/a/reset/redeem", limit(http.HandlerFunc(handler.handleResetRedeem))).Methods("POST", "OPTIONS").Name("reset-redeem")
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.login")
	defer span.End()

	var req loginRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		log.Debugf("login, decode request: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid login request")
		return
	}

	token, session, err := handler.authService.Login(ctx, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		handler.metricsManager.CounterFailedLogins.Inc()
		reqIP, _ := pkg.ReadUserIP(r)
		log.Warnf("failed admin login from %s", reqIP)
		pkg.WriteJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Errorf("login: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	handler.metricsManager.CounterLogins.Inc()
	log.Infoln("admin logged in")
	pkg.WriteJSON(w, http.StatusOK, LoginResponse{Token: token, Expiry: session.Expiry})
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.logout")
	defer span.End()

	if err := handler.authService.Logout(ctx, auth.TokenFromRequest(r)); err != nil {
		log.Errorf("logout: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (handler *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := handler.authService.Session(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		log.Errorf("get session: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if session == nil {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, SessionResponse{Authenticated: true, Expiry: session.Expiry})
}

func (handler *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := handler.authService.Profile(r.Context())
	if err != nil {
		log.Errorf("get profile: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, profile)
}

func (handler *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.updateProfile")
	defer span.End()

	var update auth.ProfileUpdate
	if err := pkg.DecodeJSON(r, &update); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid profile update")
		return
	}
	if update.Username == nil && update.Email == nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	profile, err := handler.authService.UpdateProfile(ctx, update)
	if errors.Is(err, auth.ErrInvalidProfile) {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Errorf("update profile: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Infoln("admin profile updated")
	pkg.WriteJSON(w, http.StatusOK, profile)
}

func (handler *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.changePassword")
	defer span.End()

	var req changePasswordRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid password change request")
		return
	}

	changed, err := handler.authService.ChangePassword(ctx, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, auth.ErrWeakPassword) {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Errorf("change password: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !changed {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleResetRequest answers ok for any well formed request, so callers cannot test
// which address is the recovery one.
func (handler *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.resetRequest")
	defer span.End()

	var req resetRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid reset request")
		return
	}

	handler.metricsManager.CounterResetRequests.Inc()
	sent, err := handler.authService.RequestReset(ctx, req.Email)
	if err != nil {
		log.Errorf("request password reset: %s", err)
	} else if !sent {
		reqIP, _ := pkg.ReadUserIP(r)
		log.Warnf("password reset requested for unknown address from %s", reqIP)
	}

	pkg.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (handler *Handler) handleResetRedeem(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.resetRedeem")
	defer span.End()

	var req redeemRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid reset redeem request")
		return
	}

	redeemed, err := handler.authService.RedeemReset(ctx, req.Token, req.NewPassword)
	if errors.Is(err, auth.ErrWeakPassword) {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Errorf("redeem password reset: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !redeemed {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
