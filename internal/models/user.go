package models

import "time"

// Roles assignable to a user account.
const (
	RolePassenger = "passenger"
	RoleOperator  = "operator"
	RoleAdmin     = "admin"
)

// UserModel represents a registered platform account.
type UserModel struct {
	Base
	Username     string     `json:"username"      gorm:"uniqueIndex;not null"`
	Email        string     `json:"email"         gorm:"uniqueIndex;not null"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Password     string     `json:"-"             gorm:"not null"`
	Role         string     `json:"role"          gorm:"default:passenger;not null"`
	Verified     bool       `json:"verified"      gorm:"default:false"`
	VerifyToken  string     `json:"-"             gorm:"index"`
	Locked       bool       `json:"-"             gorm:"default:false"`
	FailedLogins int        `json:"-"             gorm:"default:0"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `json:"-"`
}

func (UserModel) TableName() string { return "users" }

// PublicUser is the client-visible projection returned by auth endpoints.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

func (u *UserModel) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Verified: u.Verified,
	}
}
