package api

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

// loginRequest accepts both the OAuth2 password form field ("username")
// and a plain "email" key.
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleLogin exchanges credentials for a bearer token. Form-encoded bodies
// (OAuth2 password flow) and JSON bodies are both accepted.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxRequestBodySize)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			writeBadRequest(w, "invalid form body")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}

	errs := validation.Errors{}
	errs.Required("username", email, 0)
	errs.Required("password", req.Password, 0)
	if err := errs.Err(); err != nil {
		writeValidation(w, validation.Fields(err))
		return
	}

	token, expires, user, err := s.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, msgInvalidCredentials)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(expires.Sub(s.now()).Seconds()),
	})
}
