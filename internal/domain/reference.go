package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a selling agent referenced by imported policies, keyed by name.
type Agent struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"agent"`
	CreatedAt time.Time `json:"created_at"`
}

// Lob is a line-of-business category, keyed by category name.
type Lob struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"category_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Carrier is an insurance company, keyed by company name.
type Carrier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"company_name"`
	CreatedAt time.Time `json:"created_at"`
}
