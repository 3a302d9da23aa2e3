package domain

import "time"

// Session is a freshly issued session credential.
type Session struct {
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SignoutMessage is returned by signout.
const SignoutMessage = "You have been successfully signed out!"

// ResetRequestedMessage is returned after a reset request is accepted.
const ResetRequestedMessage = "Thanks!"
