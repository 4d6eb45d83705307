package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/emphub/internal/common"
)

const authBodyLimit = 1 << 20

type signupRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, authBodyLimit)).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := s.users.Signup(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeMessage(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, common.ErrorAlreadyExists):
			writeMessage(w, http.StatusConflict, "User already exists")
		default:
			s.writeInternalError(w, r, "signup failed", err)
		}
		return
	}

	s.logger.Info(r.Context(), "user created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully.",
		"user_id": user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, authBodyLimit)).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid Username and password")
			return
		}
		s.writeInternalError(w, r, "login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful.",
		"token":   token,
	})
}
