package model

type Customer struct {
	BaseModel
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
	Country  string `db:"country" json:"country"`
	State    string `db:"state" json:"state"`
	City     string `db:"city" json:"city"`
	Address1 string `db:"address1" json:"address1"`
	Address2 string `db:"address2" json:"address2"`
	Zip      string `db:"zip" json:"zip"`
}
