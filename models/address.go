package models

// Address is a shipping address owned by the authenticated user.
type Address struct {
	ID          string `json:"_id,omitempty"`
	FullName    string `json:"fullName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=15,numeric"`
	Pincode     string `json:"pincode" validate:"required,numeric,max=6"`
	Area        string `json:"area" validate:"required,max=500"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"required,max=100"`
}
