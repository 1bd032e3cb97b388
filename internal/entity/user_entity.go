// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type HeightUnit string

const (
	HeightUnitCm HeightUnit = "cm"
	HeightUnitIn HeightUnit = "in"
)

type User struct {
	Id         uuid.UUID
	Username   string
	Email      string
	FullName   string
	BirthDate  *time.Time
	HeightRaw  *float64
	HeightUnit HeightUnit
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Age derives the user's age in whole years, or 0 when no birth date is set.
func (u *User) Age(now time.Time) int {
	if u.BirthDate == nil {
		return 0
	}
	age := now.Year() - u.BirthDate.Year()
	if now.YearDay() < u.BirthDate.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
