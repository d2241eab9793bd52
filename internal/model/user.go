// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY ID string (not int)?
// Integer IDs generated from "timestamp plus a random offset" can collide.
// The repository layer generates xid strings instead: globally unique,
// sortable by creation time, URL-safe.
//
// Password is stored and compared as plain text. That is a deliberate
// property of this application: it is a demo with no real authentication,
// and login is an exact (email, password) match. The `json:"-"` tag keeps
// the password out of every API response.
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
