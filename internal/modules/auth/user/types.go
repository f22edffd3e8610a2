package user

import "errors"

type UpdateProfileDTO struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required"`
}

var (
	errWrongPassword = errors.New("current password does not match")
	errInvalidPhone  = errors.New("phone must be in international format 260XXXXXXXXX")
	errShortPassword = errors.New("password must be at least 8 characters")
)
