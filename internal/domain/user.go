package domain

import "time"

// User is an AudioNote account. Accounts are created on the first successful
// code verification and are never deleted. The active session token lives on
// the record itself: issuing a new one on login invalidates the previous one.
type User struct {
	UserID           string     `json:"id" dynamodbav:"user_id"`
	Email            string     `json:"email" dynamodbav:"email"`
	RemainingMinutes float64    `json:"remaining_minutes" dynamodbav:"remaining_minutes"`
	TotalMinutesUsed float64    `json:"total_minutes_used" dynamodbav:"total_minutes_used"`
	SessionToken     string     `json:"-" dynamodbav:"session_token"`
	SessionExpiresAt int64      `json:"-" dynamodbav:"session_expires_at"` // Unix seconds
	LastLogin        *time.Time `json:"last_login,omitempty" dynamodbav:"last_login"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// SessionValid reports whether the user's session token is set and unexpired.
func (u *User) SessionValid(now time.Time) bool {
	return u.SessionToken != "" && u.SessionExpiresAt > now.Unix()
}
