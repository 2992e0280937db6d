// internal/model/user.go
package model

import "time"

// User is an account; every batch, template and customer is scoped to one.
type User struct {
	ID             string    `bson:"id" json:"id"`
	Email          string    `bson:"email" json:"email"`
	FullName       string    `bson:"full_name" json:"full_name"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
