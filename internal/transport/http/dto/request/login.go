package request

type LoginRequest struct {
	Name   string `json:"name" validate:"required"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}
