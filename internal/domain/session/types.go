package session

import "time"

// DefaultLanguage is assigned to sessions created on first join.
const DefaultLanguage = "cpp"

// Session is one persisted collaboration document.
type Session struct {
	SessionID string    `json:"sessionId"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update carries the fields of a partial session update. Nil fields are
// left untouched; updated_at always advances.
type Update struct {
	Code     *string
	Language *string
}
