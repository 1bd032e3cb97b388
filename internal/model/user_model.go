package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username   string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName   string    `gorm:"type:varchar(255);not null"`
	BirthDate  *time.Time
	HeightRaw  *float64       `gorm:"type:numeric"`
	HeightUnit string         `gorm:"type:varchar(10);not null;default:'cm'"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
