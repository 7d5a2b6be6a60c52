/*
Package user holds the account model and the registration / login service.
*/
package user

import (
	"errors"
	"strconv"
)

// ID identifies an account. It is also the realtime room key for that account.
type ID int64

// String renders the id the way room names use it.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is a registered account.
type User struct {
	ID           ID
	Username     string
	Email        string
	PasswordHash string
}

// Serialized is the public view of a User.
type Serialized struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Serialize returns the fields safe to send to clients.
func (u User) Serialize() Serialized {
	return Serialized{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
