package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// NewID returns a fresh ULID string
func NewID() string {
	return ulid.Make().String()
}

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// User is a registered account. Email is the unique identifier.
type User struct {
	BaseModel    `bson:",inline"`
	Email        string `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" bson:"password_hash" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
