package dto

type CustomerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	State    string `json:"state"`
	City     string `json:"city"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Zip      string `json:"zip"`
}
