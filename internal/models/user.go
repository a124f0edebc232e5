package models

import "time"

// CodeSlot is one independent one-time-code lifecycle attached to a user:
// either the email-verification slot or the forgot-password slot. CodeHash
// and IssuedAt are always set and cleared together.
type CodeSlot struct {
	CodeHash       *string    `json:"-"`
	IssuedAt       *time.Time `json:"-"`
	LastSentAt     *time.Time `json:"-"`
	FailedAttempts int        `json:"-"`
	LastFailedAt   *time.Time `json:"-"`
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // не отдаём наружу
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`

	Verification   CodeSlot `json:"-"`
	ForgotPassword CodeSlot `json:"-"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email        string `json:"email" binding:"required,email"`
	ProvidedCode string `json:"providedCode" binding:"required,len=6,numeric"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=64"`
}

type VerifyForgotPasswordRequest struct {
	Email        string `json:"email" binding:"required,email"`
	ProvidedCode string `json:"providedCode" binding:"required,len=6,numeric"`
	NewPassword  string `json:"newPassword" binding:"required,min=8,max=64"`
}
