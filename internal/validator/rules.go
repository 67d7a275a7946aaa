package validator

import (
	"log"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные функции валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правила конфиг не проверить, запускаться дальше нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'file-ext': расширение файла в нижнем регистре, без точки
	mustRegister("file-ext", validateFileExt)
}

func validateFileExt(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || len(value) > 16 {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
