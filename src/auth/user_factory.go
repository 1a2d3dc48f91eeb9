package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,32}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type UserFactory interface {
	NewUserStruct(user NewUser) (*User, error)
	NewPasswordHash(password string) (string, error)
}

type UserFactoryImpl struct {
	// Cost is the bcrypt cost of new password hashes.
	Cost int
}

func NewUserFactory() UserFactory {
	return &UserFactoryImpl{
		Cost: DefaultCost,
	}
}

// NewUserStruct checks and normalizes registration details and hashes the
// password. Usernames and emails are trimmed and lowercased, names trimmed.
func (f *UserFactoryImpl) NewUserStruct(user NewUser) (*User, error) {
	u := &User{
		Username:  strings.ToLower(strings.TrimSpace(user.Username)),
		Email:     NormalizeEmail(user.Email),
		FirstName: strings.TrimSpace(user.FirstName),
		LastName:  strings.TrimSpace(user.LastName),
	}

	if !usernamePattern.MatchString(u.Username) {
		return nil, fmt.Errorf("%w: invalid username %q", ErrInvalidUser, u.Username)
	}
	if !emailPattern.MatchString(u.Email) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidUser, u.Email)
	}
	if u.FirstName == "" || u.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidUser)
	}

	hash, err := HashPassword(user.Password, f.Cost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	return u, nil
}

// NewPasswordHash hashes a replacement password with the factory cost.
func (f *UserFactoryImpl) NewPasswordHash(password string) (string, error) {
	return HashPassword(password, f.Cost)
}

// NormalizeEmail returns email the way it is stored in users.email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
