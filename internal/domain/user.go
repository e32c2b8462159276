package domain

import (
	"strings"

	"github.com/google/uuid"
)

// User is the identity supplied by the auth collaborator. The ledger never
// creates or deletes users; every row it owns is scoped by ID.
type User struct {
	ID string `json:"id"`
}

// NormalizeUserID validates a user id and returns its canonical UUID form.
func NormalizeUserID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &ValidationError{Field: "user_id", Message: "must be a UUID"}
	}
	return id.String(), nil
}
