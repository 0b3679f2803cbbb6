package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/dto"
	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

const (
	HintResend = "resend"
	HintForgot = "forgot"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user; it never carries the password hash.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Verified  bool       `json:"verified"`
	Theme     string     `json:"theme,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Verified:  user.Verified,
		Theme:     user.Theme,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LoginResponse struct {
	User         UserResponse `json:"user"`
	SessionToken string       `json:"session_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	Redirect     string       `json:"redirect"`
}

type MoodListResponse struct {
	Entries []*entity.MoodEntry `json:"entries"`
	Count   int                 `json:"count"`
}

type DashboardResponse struct {
	User   UserResponse        `json:"user"`
	Recent []*entity.MoodEntry `json:"recent"`
	Stats  *dto.MoodStats      `json:"stats"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
