package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/detox-companion/internal/auth"
	"github.com/sakif/detox-companion/internal/service"
)

// AuthHandler exposes registration, email/password login, and the GitHub
// OAuth flow. All credential work happens in AuthService — this layer
// only decodes requests and shapes responses.
type AuthHandler struct {
	svc    *service.AuthService
	github *auth.GitHubProvider // nil when GitHub login isn't configured
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil; the OAuth
// routes then answer 404.
func NewAuthHandler(svc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, github: github, logger: logger}
}

// authResponse is the shape both register and login return: the token
// plus the progress counters the app shows on its home screen.
type authResponse struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	Streak int    `json:"streak"`
	Coins  int    `json:"coins"`
}

// HandleRegister creates an account.
//
// POST /api/auth/register
// Body: {"name":"Alice","email":"alice@example.com","password":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:  res.Token,
		Name:   res.User.Name,
		Streak: res.User.Streak,
		Coins:  res.User.Coins,
	})
}

// HandleLogin verifies credentials and advances the login streak.
//
// POST /api/auth/login
// Body: {"email":"alice@example.com","password":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:  res.Token,
		Name:   res.User.Name,
		Streak: res.User.Streak,
		Coins:  res.User.Coins,
	})
}

// HandleGitHubLogin starts the OAuth flow: generate an unguessable state,
// park it in a short-lived HttpOnly cookie for the CSRF check on
// callback, and send the browser to GitHub.
//
// GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: verify the state,
// exchange the code for a profile, and run the normal login path (streak
// included). The token comes back in the JSON body, same shape as a
// password login — the app stores it like any other token.
//
// GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state check failed")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied", slog.String("error", errParam))
		http.Error(w, "authorization denied", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res, err := h.svc.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:  res.Token,
		Name:   res.User.Name,
		Streak: res.User.Streak,
		Coins:  res.User.Coins,
	})
}
