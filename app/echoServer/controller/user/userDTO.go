package user

type RegisterReq struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	SchoolNumber string `json:"school_number" validate:"required"`
	Phone        string `json:"phone"`
	Role         string `json:"role" validate:"omitempty,oneof=Student Staff Admin"`
}

type UpdateUserReq struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password"` // empty keeps the current password
	SchoolNumber string `json:"school_number" validate:"required"`
	Phone        string `json:"phone"`
	Role         string `json:"role" validate:"omitempty,oneof=Student Staff Admin"`
}
