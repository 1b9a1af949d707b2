package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel provides common fields for all database models
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// User represents a platform account. Registration and credential handling
// live in a separate service; this table exists so billing events can be
// resolved from the provider's customer reference to a local account.
type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-" gorm:"size:255"` // owned by the auth service

	// Opaque customer reference assigned by the billing provider
	ExternalCustomerID string `json:"external_customer_id" gorm:"size:100;uniqueIndex"`
}
