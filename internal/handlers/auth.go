package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wecare-app/wecare/internal/apperrors"
	"github.com/wecare-app/wecare/internal/handlers/middleware"
	"github.com/wecare-app/wecare/internal/handlers/render"
	"github.com/wecare-app/wecare/internal/models"
)

type authService interface {
	// Register new user
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	SignUp(ctx context.Context, data models.NewUser) error

	// Login user with username and password
	// Has to return apperrors.ErrAuthenticationFailed on bad credentials
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// End session of the access token holder
	// Has to return apperrors.ErrInvalidToken if token does not validate
	Logout(ctx context.Context, accessToken string) error

	// Rotate token pair using refresh token
	// Has to return apperrors.ErrInvalidToken or apperrors.ErrTokenMismatch
	Reissue(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

type AuthHandler struct {
	authService authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{authService: auth}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", h.signUp)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /reissue", h.reissue)

	return mux
}

// TokenResponse carries the issued pair back to the client
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	type SignUpRequest struct {
		Username  string `json:"username" validate:"required,username"`
		Password  string `json:"password" validate:"required,userpassword"`
		Name      string `json:"name" validate:"required"`
		Phone     string `json:"phone" validate:"required,mobile"`
		Gender    string `json:"gender" validate:"required,oneof=MALE FEMALE"`
		BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02,pastdate"`
		Role      string `json:"role" validate:"required,oneof=GUARDIAN WARD"`
	}
	type SignUpSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[SignUpRequest](w, r)
	if err != nil {
		return
	}

	// Format is already validated
	birthDate, _ := time.Parse(time.DateOnly, data.BirthDate)

	err = h.authService.SignUp(r.Context(), models.NewUser{
		Username:  data.Username,
		Password:  data.Password,
		Name:      data.Name,
		Phone:     data.Phone,
		Gender:    models.Gender(data.Gender),
		BirthDate: birthDate,
		Role:      models.Role(data.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, SignUpSuccessResponse{Message: "User registered successfully"}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthenticationFailed):
			render.ServiceError(w, "Authentication failed", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	token, ok := middleware.BearerToken(r)
	if !ok {
		render.ServiceError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	err := h.authService.Logout(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid access token", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "User logged out successfully"})
}

func (h *AuthHandler) reissue(w http.ResponseWriter, r *http.Request) {
	type ReissueRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[ReissueRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Reissue(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrTokenMismatch):
			render.ServiceError(w, "Refresh token mismatch", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}
