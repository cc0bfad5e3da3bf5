package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
)

type UserStatus string

const (
	UserActive UserStatus = "ACTIVE"
	UserBanned UserStatus = "BANNED"
)

// User rows are never hard-deleted; ban/unban flips Status only.
type User struct {
	ID           string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash *string    `gorm:"column:password_hash;type:text" json:"-"` // nil for OAuth-only accounts
	Name         string     `gorm:"column:name;type:text" json:"name"`
	Role         UserRole   `gorm:"column:role;type:text" json:"role"`
	Status       UserStatus `gorm:"column:status;type:text" json:"status"`

	Provider   *string `gorm:"column:provider;type:text" json:"provider,omitempty"`
	ProviderID *string `gorm:"column:provider_id;type:text" json:"provider_id,omitempty"`

	ScheduledInterviewAt *time.Time `gorm:"column:scheduled_interview_at;type:timestamptz" json:"scheduled_interview_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (User) TableName() string { return "users" }
