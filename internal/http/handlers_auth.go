package httpx

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/domain/booking"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/service"
)

// SessionController is the slice of the auth session controller the handlers drive.
type SessionController interface {
	SessionSource
	Login(ctx context.Context, email, password string) (domainauth.Role, error)
	Register(ctx context.Context, reg booking.Registration) (domainauth.Role, error)
	Logout(ctx context.Context)
}

// AuthHandlers serves the sign-in, sign-up and session status endpoints.
type AuthHandlers struct {
	Svc       SessionController
	LoginPath string
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) loginPath() string {
	if h.LoginPath != "" {
		return h.LoginPath
	}
	return defaultLoginPath
}

// roleHome is the landing page for role; "/" when no role is known.
func roleHome(role domainauth.Role) string {
	switch domainauth.NormalizeRole(string(role)) {
	case domainauth.RolePatient:
		return "/patient"
	case domainauth.RoleDoctor:
		return "/doctor"
	case domainauth.RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// landing picks a caller-supplied redirect when it is safe and meaningful, else the role home.
func landing(redirectURI string, role domainauth.Role) string {
	if p := safeRedirectPath(redirectURI); redirectURI != "" && p != "/" {
		return p
	}
	return roleHome(role)
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func isJSONBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// LoginView returns the login view model.
func (h *AuthHandlers) LoginView(w http.ResponseWriter, r *http.Request) {
	s := h.Svc.Session()
	q := r.URL.Query()
	view := map[string]any{
		"state":        s.State(),
		"loggingIn":    s.LoggingIn,
		"redirect_uri": safeRedirectPath(q.Get("redirect_uri")),
	}
	if msg := q.Get("error"); msg != "" {
		view["error"] = msg
	} else if s.LastError != "" {
		view["error"] = s.LastError
	}
	if s.HasCredential() {
		view["redirect_to"] = landing(q.Get("redirect_uri"), s.Role)
	}
	WriteJSON(w, http.StatusOK, view)
}

// Login signs in with a JSON body or a form post.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	jsonBody := isJSONBody(r)
	if jsonBody {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else {
		req = loginRequest{
			Email:       r.FormValue("email"),
			Password:    r.FormValue("password"),
			RedirectURI: r.FormValue("redirect_uri"),
		}
	}
	req.Email = strings.TrimSpace(req.Email)
	browser := !jsonBody && isBrowserRequest(r)

	if err := req.Validate(); err != nil {
		if browser {
			h.backToLogin(w, r, "Email and password are required.", req.RedirectURI)
			return
		}
		writeServiceError(w, err)
		return
	}

	role, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		msg := service.LoginErrorMessage(err)
		h.logger().InfoContext(r.Context(), "login failed", "error_code", string(apperrors.GetCode(err)))
		if browser {
			h.backToLogin(w, r, msg, req.RedirectURI)
			return
		}
		WriteJSON(w, loginFailureStatus(err), map[string]string{
			"error":   string(apperrors.GetCode(err)),
			"message": msg,
		})
		return
	}

	h.signedIn(w, r, browser, role, req.RedirectURI)
}

func loginFailureStatus(err error) int {
	switch {
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperrors.IsTransport(err), apperrors.IsUnavailable(err):
		return http.StatusBadGateway
	case apperrors.IsTimeout(err):
		return http.StatusGatewayTimeout
	case apperrors.IsValidation(err), apperrors.IsConflict(err):
		return http.StatusBadRequest
	case apperrors.IsCanceled(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *AuthHandlers) signedIn(w http.ResponseWriter, r *http.Request, browser bool, role domainauth.Role, redirectURI string) {
	target := landing(redirectURI, role)
	if browser {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"role":        string(role),
		"redirect_to": target,
	})
}

func (h *AuthHandlers) backToLogin(w http.ResponseWriter, r *http.Request, msg, redirectURI string) {
	q := url.Values{}
	q.Set("error", msg)
	if redirectURI != "" {
		q.Set("redirect_uri", safeRedirectPath(redirectURI))
	}
	http.Redirect(w, r, h.loginPath()+"?"+q.Encode(), http.StatusSeeOther)
}

// Signup registers a patient account and signs it in.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var reg booking.Registration
	jsonBody := isJSONBody(r)
	if jsonBody {
		if !DecodeJSON(w, r, &reg) {
			return
		}
	} else {
		reg = booking.Registration{
			FirstName:       r.FormValue("firstName"),
			LastName:        r.FormValue("lastName"),
			Email:           r.FormValue("email"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
			Role:            r.FormValue("role"),
		}
	}

	role, err := h.Svc.Register(r.Context(), reg)
	if err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			h.logger().InfoContext(r.Context(), "signup failed", "error_code", string(apperrors.GetCode(err)))
		}
		writeServiceError(w, err)
		return
	}
	h.signedIn(w, r, !jsonBody && isBrowserRequest(r), role, "")
}

// Logout drops the session; AJAX callers get JSON, others a redirect to the login page.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Svc.Logout(r.Context())

	if isAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": h.loginPath(),
		})
		return
	}
	http.Redirect(w, r, h.loginPath(), http.StatusSeeOther)
}

type statusUser struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type statusResponse struct {
	State     domainauth.State `json:"state"`
	Role      domainauth.Role  `json:"role,omitempty"`
	Resolving bool             `json:"resolving"`
	LoggingIn bool             `json:"loggingIn"`
	LastError string           `json:"lastError,omitempty"`
	User      *statusUser      `json:"user,omitempty"`
}

func sessionStatus(s domainauth.Session) statusResponse {
	out := statusResponse{
		State:     s.State(),
		Role:      s.Role,
		Resolving: s.Resolving,
		LoggingIn: s.LoggingIn,
		LastError: s.LastError,
	}
	if s.Profile != nil {
		out.User = &statusUser{ID: s.Profile.ID(), Email: s.Profile.Email(), DisplayName: s.Profile.DisplayName()}
	}
	return out
}

// Status reports the session phase without exposing the credential.
func (h *AuthHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, sessionStatus(h.Svc.Session()))
}

// Forbidden is the landing page for role mismatches.
func (h *AuthHandlers) Forbidden(w http.ResponseWriter, _ *http.Request) {
	s := h.Svc.Session()
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":   "forbidden",
		"message": "You do not have access to this page.",
		"home":    roleHome(s.Role),
	})
}

// Home sends signed-in callers to their role home and everyone else to the login page.
func (h *AuthHandlers) Home(w http.ResponseWriter, r *http.Request) {
	s := h.Svc.Session()
	target := h.loginPath()
	if s.HasCredential() {
		target = roleHome(s.Role)
	}
	if isBrowserRequest(r) && target != "/" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":      sessionStatus(s),
		"redirect_to": target,
	})
}
