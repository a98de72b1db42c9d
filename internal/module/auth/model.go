package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can own and collaborate on projects.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}
