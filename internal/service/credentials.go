package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"minimercado/backend/internal/domain"
)

// Credential is one entry of the fixed login set.
type Credential struct {
	Email        string
	PasswordHash string
	User         domain.User
}

const (
	defaultAdminPassword    = "123"
	defaultOperatorPassword = "123"
)

// DefaultCredentials builds the shop's two built-in accounts. Empty
// passwords fall back to the development defaults.
func DefaultCredentials(adminPassword string, operatorPassword string) ([]Credential, error) {
	if adminPassword == "" {
		adminPassword = defaultAdminPassword
	}
	if operatorPassword == "" {
		operatorPassword = defaultOperatorPassword
	}

	accounts := []struct {
		user     domain.User
		password string
	}{
		{domain.User{ID: "1", Name: "Admin", Email: "admin@market.com", Role: domain.RoleAdmin}, adminPassword},
		{domain.User{ID: "2", Name: "Operador", Email: "op@market.com", Role: domain.RoleOperator}, operatorPassword},
	}

	creds := make([]Credential, 0, len(accounts))
	for _, acc := range accounts {
		hash, err := HashPassword(acc.password)
		if err != nil {
			return nil, err
		}
		creds = append(creds, Credential{Email: acc.user.Email, PasswordHash: hash, User: acc.user})
	}
	return creds, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
