package users

import (
	"errors"
	"time"
)

// User is the credential-store row. PasswordHash never leaves the package
// boundary in a response.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PrivilegeID  int64     `json:"privilege_id"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subject is the identity view consumed by authorization: who the caller is
// and which role governs their permission set.
type Subject struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Privilege is a named role record. Privileges are reassigned, not deleted,
// while any user still references them.
type Privilege struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
)

func (u User) Subject() Subject {
	return Subject{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
