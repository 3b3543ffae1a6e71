package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "APP_ADMIN"
	RoleUser  = "NORMAL_ROLE"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:'NORMAL_ROLE'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
