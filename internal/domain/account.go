package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account groups a user's policies, keyed by account name. Each ingestion
// of a row re-points the account at the row's resolved user.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"account_name"`
	UserID    uuid.NullUUID `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
}
