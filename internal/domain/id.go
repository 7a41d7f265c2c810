package domain

import "github.com/google/uuid"

// NewRunID returns a UUIDv7 identifying one engine run. IDs sort by
// creation time, so the runs table lists newest first by ID as well.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
