package handlers

import (
	"net/http"

	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides sign up and login.
type AuthHandler struct {
	userService *services.UserService
	logger      logging.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, logger logging.Logger) {
	handler := NewAuthHandler(userService, logger)

	r.Post("/signUp", handler.SignUp)
	r.Post("/login", handler.Login)
}

// SignUp creates a new account.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FullName); err != nil {
		writeServiceError(w, r, h.logger, err, userNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ok("User created successfully"))
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, userNotFound)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Response: ok("User logged in successfully"),
		Token:    token,
	})
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"pwd" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"pwd" validate:"required"`
}

type LoginResponse struct {
	Response
	Token string `json:"token"`
}
