package services

import (
	"fmt"
	"sharevault/models"

	"golang.org/x/crypto/bcrypt"
)

// AccessGate resolves a file's visibility policy against the requester's
// identity and, for password-gated files, a supplied credential.
type AccessGate struct {
	bcryptCost int
}

func NewAccessGate() *AccessGate {
	return &AccessGate{bcryptCost: bcrypt.DefaultCost}
}

// Authorize returns nil when the requester may read the record. Rules in
// order: public allows everyone; private allows only the owner; password
// allows the owner unconditionally, anyone else with the matching password.
// Denials are ErrForbidden, ErrPasswordRequired or ErrIncorrectPassword.
func (g *AccessGate) Authorize(file *models.File, requesterID, suppliedPassword string) error {
	switch file.Visibility {
	case models.VisibilityPublic:
		return nil

	case models.VisibilityPrivate:
		if requesterID != "" && requesterID == file.OwnerID {
			return nil
		}
		return ErrForbidden

	case models.VisibilityPassword:
		if requesterID != "" && requesterID == file.OwnerID {
			return nil
		}
		if suppliedPassword == "" {
			return ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(file.PasswordHash), []byte(suppliedPassword)) != nil {
			return ErrIncorrectPassword
		}
		return nil
	}

	return ErrForbidden
}

// HashPassword hashes a file password with the same scheme user credentials
// use. The hash is stored on the record and never serialized to clients.
func (g *AccessGate) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
