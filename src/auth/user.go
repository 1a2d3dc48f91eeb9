package auth

import (
	"fmt"

	"github.com/pranubaita/photoshare/src/models"
)

// User is a typed view of a record in the users collection.
type User struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Bio          string
}

type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Record converts the user into a record of the users collection.
func (u *User) Record() models.Record {
	return models.Record{
		"username":      u.Username,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"bio":           u.Bio,
	}
}

// UserFromRecord reads a users record. Every field except bio must be a string.
func UserFromRecord(record models.Record) (*User, error) {
	var u User
	for field, dest := range map[string]*string{
		"username":      &u.Username,
		"email":         &u.Email,
		"password_hash": &u.PasswordHash,
		"first_name":    &u.FirstName,
		"last_name":     &u.LastName,
	} {
		value, ok := record[field].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, not a string", ErrInvalidUser, field, record[field])
		}
		*dest = value
	}
	u.Bio, _ = record["bio"].(string)
	return &u, nil
}
