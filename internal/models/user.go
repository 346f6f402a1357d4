package models

import (
	"time"

	"github.com/google/uuid"
)

// user roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is registered account
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// TokenPayload is data carried by auth token
type TokenPayload struct {
	UserID uuid.UUID
	Role   string
}

// Profile is company/address record attached to user
type Profile struct {
	UserID       uuid.UUID
	CompanyName  string
	CNPJ         string
	Phone        string
	CEP          string
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	UpdatedAt    time.Time
}
