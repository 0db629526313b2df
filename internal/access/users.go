package access

import (
	"fmt"
	"strings"

	"github.com/brueckenwerk/cms/internal/models"
	"github.com/google/uuid"
)

// NewUser builds an account with a fresh id, a normalized email and a
// hashed password. Timestamps are left to the caller.
func NewUser(email, name, role, password string) (models.User, error) {
	if !ValidRole(role) {
		return models.User{}, fmt.Errorf("unknown role %q", role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
	}, nil
}
