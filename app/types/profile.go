package types

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// UpdateProfileRequest is a partial update; omitted fields stay unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Theme    *string `json:"theme" validate:"omitempty,oneof=light dark system"`
}

func NewUpdateProfileRequestFromContext(ctx echo.Context) (*UpdateProfileRequest, error) {
	var body UpdateProfileRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Username == nil && r.Theme == nil {
		return errors.New("nothing to update")
	}

	return validateStruct(r)
}
