package mongo

import (
	"time"

	"github.com/baechuer/bridge-auth/internal/domain"
)

// userDoc is the persisted shape of a user. Verification codes use
// omitempty: the field exists only while the channel is unverified.
type userDoc struct {
	ID                    string `bson:"_id"`
	Phone                 string `bson:"phone"`
	Email                 string `bson:"email"`
	Password              string `bson:"password"`
	EmailVerified         bool   `bson:"email_verified"`
	EmailVerificationCode string `bson:"email_verification_code,omitempty"`
	PhoneVerified         bool   `bson:"phone_verified"`
	PhoneVerificationCode string `bson:"phone_verification_code,omitempty"`
}

func toUserDoc(u domain.User) userDoc {
	return userDoc{
		ID:                    u.ID,
		Phone:                 u.Phone,
		Email:                 u.Email,
		Password:              u.Password,
		EmailVerified:         u.EmailVerified,
		EmailVerificationCode: u.EmailVerificationCode,
		PhoneVerified:         u.PhoneVerified,
		PhoneVerificationCode: u.PhoneVerificationCode,
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:                    d.ID,
		Phone:                 d.Phone,
		Email:                 d.Email,
		Password:              d.Password,
		EmailVerified:         d.EmailVerified,
		EmailVerificationCode: d.EmailVerificationCode,
		PhoneVerified:         d.PhoneVerified,
		PhoneVerificationCode: d.PhoneVerificationCode,
	}
}

type resetDoc struct {
	Email     string    `bson:"email"`
	Link      string    `bson:"link"`
	Timestamp time.Time `bson:"timestamp"`
}

func verifiedField(ch domain.Channel) string { return string(ch) + "_verified" }
func codeField(ch domain.Channel) string     { return string(ch) + "_verification_code" }
