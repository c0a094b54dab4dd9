package dto

import (
	"time"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// SignupRequest is the citizen self-registration payload.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest consumes an email verification code.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendVerificationRequest asks for a fresh verification code.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// LoginRequest opens a session.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest carries the optional profile fields; absent fields are
// left unchanged.
type ProfileUpdateRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	Password         *string `json:"password"`
	TelegramHandle   *string `json:"telegram_handle"`
	TelegramChatID   *int64  `json:"telegram_chat_id"`
	NotificationPref *string `json:"notification_pref"`
}

// UserResponse is the public account representation.
type UserResponse struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	Role             domain.Role        `json:"role"`
	IsVerified       bool               `json:"is_verified"`
	TelegramHandle   *string            `json:"telegram_handle,omitempty"`
	NotificationPref string             `json:"notification_pref"`
	Department       *domain.Department `json:"department,omitempty"`
	PhotoURL         *string            `json:"photo_url,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// FromUser maps a domain user to its response shape.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		IsVerified:       user.IsVerified,
		TelegramHandle:   user.TelegramHandle,
		NotificationPref: string(user.NotificationPref),
		Department:       user.Department,
		CreatedAt:        user.CreatedAt,
	}
}
