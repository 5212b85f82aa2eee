package dto

import "github.com/baechuer/bridge-auth/internal/domain"

type MessageResponse struct {
	Message string `json:"message"`
}

type SignUpResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
}

// LoginResponse omits token when issuance degraded.
type LoginResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
	Token   string `json:"token,omitempty"`
}

type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// UserRecord is a stored user as-is, plaintext password included.
// Verification code fields are absent once the channel is verified.
type UserRecord struct {
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Password              string `json:"password"`
	EmailVerified         bool   `json:"email_verified"`
	EmailVerificationCode string `json:"email_verification_code,omitempty"`
	PhoneVerified         bool   `json:"phone_verified"`
	PhoneVerificationCode string `json:"phone_verification_code,omitempty"`
}

type UsersResponse struct {
	Users []UserRecord `json:"users"`
}

func NewUserRecord(u domain.User) UserRecord {
	r := UserRecord{
		Phone:         u.Phone,
		Email:         u.Email,
		Password:      u.Password,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
	}
	if !u.EmailVerified {
		r.EmailVerificationCode = u.EmailVerificationCode
	}
	if !u.PhoneVerified {
		r.PhoneVerificationCode = u.PhoneVerificationCode
	}
	return r
}

func NewUsersResponse(users []domain.User) UsersResponse {
	out := make([]UserRecord, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserRecord(u))
	}
	return UsersResponse{Users: out}
}
