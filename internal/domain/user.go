package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHRAdmin  Role = "HR_ADMIN"
	RoleAdmin    Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
