// internal/model/template.go
package model

import "time"

// Template is a message template. Placeholders are extracted from Content at
// creation time and kept in order of first appearance.
type Template struct {
	ID           string    `bson:"id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Name         string    `bson:"name" json:"name"`
	Content      string    `bson:"content" json:"content"`
	Placeholders []string  `bson:"placeholders" json:"placeholders"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
