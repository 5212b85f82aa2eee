package domain

import "time"

// Channel is one of the two independently verified contact channels.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// User is the credential-store record for one account.
// A verification code is non-empty only while its channel is unverified;
// stores persist an empty code as an absent field.
type User struct {
	ID                    string
	Phone                 string
	Email                 string
	Password              string
	EmailVerified         bool
	EmailVerificationCode string
	PhoneVerified         bool
	PhoneVerificationCode string
}

// Verified reports whether the given channel has been verified.
func (u User) Verified(ch Channel) bool {
	if ch == ChannelPhone {
		return u.PhoneVerified
	}
	return u.EmailVerified
}

// Code returns the pending verification code for the channel.
func (u User) Code(ch Channel) string {
	if ch == ChannelPhone {
		return u.PhoneVerificationCode
	}
	return u.EmailVerificationCode
}

// MarkVerified flips the channel flag and drops its code.
func (u *User) MarkVerified(ch Channel) {
	if ch == ChannelPhone {
		u.PhoneVerified = true
		u.PhoneVerificationCode = ""
		return
	}
	u.EmailVerified = true
	u.EmailVerificationCode = ""
}

// PasswordReset is one entry of the append-only reset audit log.
type PasswordReset struct {
	Email     string
	Link      string
	Timestamp time.Time
}
