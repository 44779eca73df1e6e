package users

import "time"

// User es una cuenta registrada. PasswordHash es bcrypt; nunca sale por la API.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string

	CreatedAt time.Time
}
