package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

// maxPasswordLength bounds the hashing work a single request can ask for.
const maxPasswordLength = 256

type createUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
	HomeID   *int64    `json:"home_id"`
}

func (req *createUserRequest) validate() error {
	errs := validation.Errors{}
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Email == "":
		errs.Add("email", "field required")
	case !auth.IsValidEmail(req.Email):
		errs.Add("email", "value is not a valid email address")
	}
	errs.Required("password", req.Password, maxPasswordLength)
	if req.Role == "" {
		req.Role = auth.RoleUser
	}
	validation.OneOf(errs, "role", req.Role, auth.RoleUser, auth.RoleAdmin)
	if req.HomeID != nil {
		errs.PositiveID("home_id", *req.HomeID)
	}
	return errs.Err()
}

func (req *createUserRequest) toUser() (*auth.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return &auth.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		HomeID:       req.HomeID,
	}, nil
}

// handleInitAdmin creates the first admin account. It is open without a
// token, but only while no admin exists.
func (s *Server) handleInitAdmin(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Role = auth.RoleAdmin
	if err := req.validate(); err != nil {
		writeValidation(w, validation.Fields(err))
		return
	}

	user, err := req.toUser()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.users.CreateFirstAdmin(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrAdminExists) {
			writeForbidden(w, msgAdminExists)
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Warn("initial admin created via API", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeValidation(w, validation.Fields(err))
		return
	}

	user, err := req.toUser()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Created user: "+user.Email)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}
