package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"line_price_portal/internal/model"
)

// RegisterValidators 注册自定义校验标签 role / permission
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.IsValidRole(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return model.IsValidPermission(fl.Field().String())
	})
}
