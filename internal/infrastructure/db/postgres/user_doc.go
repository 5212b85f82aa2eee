package postgres

import "github.com/baechuer/bridge-auth/internal/domain"

// userDoc is the JSONB body of a users row. Codes are omitted once their
// channel is verified, matching the "field removed" rule of the record.
type userDoc struct {
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Password              string `json:"password"`
	EmailVerified         bool   `json:"email_verified"`
	EmailVerificationCode string `json:"email_verification_code,omitempty"`
	PhoneVerified         bool   `json:"phone_verified"`
	PhoneVerificationCode string `json:"phone_verification_code,omitempty"`
}

func toUserDoc(u domain.User) userDoc {
	return userDoc{
		Phone:                 u.Phone,
		Email:                 u.Email,
		Password:              u.Password,
		EmailVerified:         u.EmailVerified,
		EmailVerificationCode: u.EmailVerificationCode,
		PhoneVerified:         u.PhoneVerified,
		PhoneVerificationCode: u.PhoneVerificationCode,
	}
}

func (d userDoc) toDomain(id string) domain.User {
	return domain.User{
		ID:                    id,
		Phone:                 d.Phone,
		Email:                 d.Email,
		Password:              d.Password,
		EmailVerified:         d.EmailVerified,
		EmailVerificationCode: d.EmailVerificationCode,
		PhoneVerified:         d.PhoneVerified,
		PhoneVerificationCode: d.PhoneVerificationCode,
	}
}
