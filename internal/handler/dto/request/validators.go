package request

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("channel", validateChannel)
}

func validateChannel(fl validator.FieldLevel) bool {
	_, err := hold.ParseChannel(fl.Field().String())
	return err == nil
}
