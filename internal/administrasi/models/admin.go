package models

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DeleteManyRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}
