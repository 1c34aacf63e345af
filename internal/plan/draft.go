package plan

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labourtime/labourtime/internal/ledger"
	"github.com/labourtime/labourtime/internal/model"
)

// Draft is a plan as submitted by its planner, before approval.
type Draft struct {
	Planner         uuid.UUID       `json:"planner"`
	Labour          decimal.Decimal `json:"costs_a" validate:"gte=0"`
	Resources       decimal.Decimal `json:"costs_r" validate:"gte=0"`
	Means           decimal.Decimal `json:"costs_p" validate:"gte=0"`
	ProductName     string          `json:"prd_name" validate:"required"`
	ProductUnit     string          `json:"prd_unit"`
	ProductAmount   int             `json:"prd_amount" validate:"gte=1"`
	Description     string          `json:"description"`
	Timeframe       int             `json:"timeframe" validate:"gte=1"`
	IsPublicService bool            `json:"is_public_service"`
}

// Costs returns the draft's production costs.
func (d Draft) Costs() model.ProductionCosts {
	return model.ProductionCosts{Labour: d.Labour, Resources: d.Resources, Means: d.Means}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateDraft checks a draft and returns every violated rule.
func validateDraft(v *validator.Validate, d Draft) ledger.ValidationErrors {
	var errs ledger.ValidationErrors
	if d.Planner == uuid.Nil {
		errs = append(errs, ledger.ValidationError{Field: "planner", Description: "must be set"})
	}
	err := v.Struct(d)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(errs, ledger.ValidationError{Field: "draft", Description: err.Error()})
	}
	for _, fe := range verrs {
		errs = append(errs, ledger.ValidationError{Field: fe.Field(), Description: describe(fe)})
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gte":
		return "must be at least " + fe.Param()
	}
	return "failed " + fe.Tag()
}
