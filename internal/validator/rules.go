package validator

import (
	"log"

	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка конфигурации, дальше запускаться нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-content-type': blog, social, email, seo
	mustRegister("is-content-type", validateContentType)

	// 'is-subscription-status': статусы из statuses.go
	mustRegister("is-subscription-status", validateSubscriptionStatus)

	// 'is-plan-id': ID тарифа из каталога
	mustRegister("is-plan-id", validatePlanID)
}

// --- Функции валидации ---

func validateContentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения ловит 'required'
	}
	return models.ContentType(value).IsValid()
}

func validateSubscriptionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.SubscriptionStatus(value).IsValid()
}

func validatePlanID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := billing.LookupPlan(value)
	return ok
}
