package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Role string

const (
	RoleGuardian Role = "GUARDIAN"
	RoleWard     Role = "WARD"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
	Name           string
	Phone          string
	Gender         Gender
	BirthDate      time.Time
	Role           Role
}

// NewUser carries validated sign-up data down to the auth service.
// Password is still plaintext here, the service hashes it before save.
type NewUser struct {
	Username  string
	Password  string
	Name      string
	Phone     string
	Gender    Gender
	BirthDate time.Time
	Role      Role
}
