package domain

import "time"

// IdempotencyEntry remembers the response to a mutating request so that a
// retry carrying the same key replays it instead of repeating the effect.
type IdempotencyEntry struct {
	AccountID      string     `json:"account_id" db:"account_id"`
	Key            string     `json:"key" db:"key_id"`
	RequestHash    string     `json:"request_hash" db:"request_hash"`
	ResponseStatus int        `json:"response_status" db:"response_status"`
	ResponseBody   []byte     `json:"response_body" db:"response_body"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

func (e *IdempotencyEntry) Completed() bool {
	return e.CompletedAt != nil
}

// Matches reports whether hash identifies the request the key was first
// used with. Entries stored without a hash match anything.
func (e *IdempotencyEntry) Matches(hash string) bool {
	return e.RequestHash == "" || e.RequestHash == hash
}
