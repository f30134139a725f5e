package dto

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateUserInput leaves the password unchanged when Password is empty.
type UpdateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"omitempty,min=8"`
}
