package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/server/models"
	"github.com/matoscout/api/internal/server/services"
)

// AuthService is the slice of the service layer the HTTP boundary consumes.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// reject writes a client-caused problem response. Client failures are
// routine, so they leave only a debug-level trace.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "title", title)
	writeProblem(w, status, title, detail)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		s.reject(w, r, http.StatusUnprocessableEntity, "Invalid payload.",
			"Request body must be JSON with email and password fields.")
		return
	}

	user, err := s.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		s.reject(w, r, http.StatusUnprocessableEntity, "Invalid payload.",
			"Request body must be JSON with email and password fields.")
		return
	}

	pair, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.reject(w, r, http.StatusUnprocessableEntity, "Invalid payload.",
			"Request body must be JSON with a refresh_token field.")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// writeError maps service failures onto the wire taxonomy. Validation and
// credential failures are surfaced as-is; everything else is logged with
// full context and presented as an opaque retry-later response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		s.reject(w, r, http.StatusUnauthorized, "Invalid credentials.",
			"Provided credentials are invalid - please verify your email and password.")
	case errors.Is(err, common.ErrInvalidRefreshToken):
		s.reject(w, r, http.StatusUnauthorized, "Invalid refresh token.",
			"Provided refresh token is invalid - please re-authenticate.")
	case errors.Is(err, common.ErrEmailTaken):
		// Discloses account existence; kept deliberately, see design notes.
		s.reject(w, r, http.StatusConflict, "Email already used.",
			"Provided email is already used - please choose another email.")
	case errors.Is(err, common.ErrInvalidEmail):
		s.reject(w, r, http.StatusUnprocessableEntity, "Invalid payload.",
			"Provided email address is not valid.")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeProblem(w, http.StatusInternalServerError, "Something went wrong.",
			"An error occurred - please retry later.")
	}
}
