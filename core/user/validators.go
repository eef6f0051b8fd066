package user

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type (
	NewUser struct {
		Name     string `json:"name" validate:"required"`
		Username string `json:"username" validate:"required,alphanum_"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     Role   `json:"role" validate:"required"`
		TenantID string `json:"tenant_id" validate:"required,subdomain"`
	}

	LoginUser struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
)

func (nu *NewUser) clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.TenantID = core.CleanString(nu.TenantID, true /* lower */)
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	if !nu.Role.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "unknown role"})
	}
	return svc.checkUniqueness(ctx, nu.Username, nu.Email)
}

func (lu *LoginUser) Validate(validate *validator.Validate) error {
	lu.Username = core.CleanString(lu.Username, true /* lower */)
	return validate.Struct(lu)
}
