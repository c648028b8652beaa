package handlers

import (
	"net/http"
	"time"

	"github.com/wecare-app/wecare/internal/handlers/render"
	"github.com/wecare-app/wecare/internal/handlers/userctx"
)

// MemberHandler serves the authenticated user's own profile
// Mounted behind the auth middleware.
type MemberHandler struct{}

func NewMember() *MemberHandler {
	return &MemberHandler{}
}

func (h *MemberHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", h.me)

	return mux
}

func (h *MemberHandler) me(w http.ResponseWriter, r *http.Request) {
	type MeResponse struct {
		Username  string `json:"username"`
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Gender    string `json:"gender"`
		BirthDate string `json:"birth_date"`
		Role      string `json:"role"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	render.JSON(w, MeResponse{
		Username:  user.Username,
		Name:      user.Name,
		Phone:     user.Phone,
		Gender:    string(user.Gender),
		BirthDate: user.BirthDate.Format(time.DateOnly),
		Role:      string(user.Role),
	})
}
