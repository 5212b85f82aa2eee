package domain

import "testing"

func TestUserStruct_DefaultZeroValues(t *testing.T) {
	var u User

	if u.EmailVerified || u.PhoneVerified {
		t.Fatalf("expected both channels unverified")
	}
}

func TestUser_MarkVerified_ClearsOnlyThatChannel(t *testing.T) {
	u := User{EmailVerificationCode: "123456", PhoneVerificationCode: "654321"}

	u.MarkVerified(ChannelEmail)

	if !u.Verified(ChannelEmail) || u.Code(ChannelEmail) != "" {
		t.Fatalf("email channel not transitioned: %+v", u)
	}
	if u.Verified(ChannelPhone) || u.Code(ChannelPhone) != "654321" {
		t.Fatalf("phone channel should be untouched: %+v", u)
	}

	u.MarkVerified(ChannelPhone)
	if !u.PhoneVerified || u.PhoneVerificationCode != "" {
		t.Fatalf("phone channel not transitioned: %+v", u)
	}
}
