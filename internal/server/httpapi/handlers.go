package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avdokushin/authgate/internal/common"
	"github.com/avdokushin/authgate/internal/server/auth"
	"github.com/avdokushin/authgate/internal/server/services"
)

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.logger.Info(ctx, "Signup request")

	sub := services.Submission{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	result := s.auth.Signup(ctx, sub, NewCookieTransport(w, r, s.secureCookies))
	if result.OK {
		s.logger.Info(ctx, "Signed up", "email", sub.Email)
	}
	writeResult(w, result)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub := services.Submission{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	result := s.auth.Login(ctx, sub, NewCookieTransport(w, r, s.secureCookies))
	if result.OK {
		s.logger.Info(ctx, "Logged in", "email", sub.Email)
	}
	writeResult(w, result)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	result := s.auth.Logout(NewCookieTransport(w, r, s.secureCookies))
	writeResult(w, result)
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request, accountID string) {
	ctx := r.Context()

	account, err := s.auth.Profile(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "account not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	})
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// withSession verifies the session cookie and passes the authenticated
// account identifier to next. Any verification failure is a 401; the
// typed failure is logged for diagnostics only.
func (s *HTTPServer) withSession(next func(w http.ResponseWriter, r *http.Request, accountID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transport := NewCookieTransport(w, r, s.secureCookies)

		token, ok := transport.Read()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "not authenticated"})
			return
		}

		session, err := auth.VerifyToken(token, s.auth.SecretKey())
		if err != nil {
			s.logger.Debug(r.Context(), "session rejected", "reason", err.Error())
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "not authenticated"})
			return
		}

		next(w, r, session.AccountID)
	}
}

func writeResult(w http.ResponseWriter, result services.Result) {
	status := http.StatusOK
	switch {
	case result.Message != "":
		status = http.StatusInternalServerError
	case len(result.Errors) > 0:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
