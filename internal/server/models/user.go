package models

// User is an account row. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
}
