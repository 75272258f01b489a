package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/domain"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	// Los errores usan el nombre JSON del campo (products[0].quantity), no el del struct.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// decimal.Decimal se valida como número (gt=0, gte=0, etc.).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// money: importes que caben en NUMERIC(14,2) sin redondeo.
	_ = v.RegisterValidation("money", validateMoney)

	return v
}

// MaxMoney cota exclusiva de un importe (NUMERIC(14,2) admite 12 dígitos enteros).
var MaxMoney = decimal.New(1, 12)

// validateMoney lee el decimal original del struct padre: el custom type func ya lo
// convirtió a float64 y con eso no se puede contar decimales.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := moneyField(fl)
	if !ok {
		return false
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return false
	}
	return d.Abs().LessThan(MaxMoney)
}

func moneyField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	parent := fl.Parent()
	for parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return decimal.Decimal{}, false
		}
		parent = parent.Elem()
	}
	if parent.Kind() != reflect.Struct {
		return decimal.Decimal{}, false
	}
	f := parent.FieldByName(fl.StructFieldName())
	for f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return decimal.Decimal{}, false
		}
		f = f.Elem()
	}
	if !f.IsValid() || !f.CanInterface() {
		return decimal.Decimal{}, false
	}
	d, ok := f.Interface().(decimal.Decimal)
	return d, ok
}

// Validate valida los tags `validate` de data y devuelve el primer campo inválido,
// o nil si todo es correcto.
func Validate(data interface{}) *domain.ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("body", err.Error())
	}
	fe := verrs[0]
	return domain.NewValidationError(fieldPath(fe.Namespace()), message(fe))
}

// fieldPath quita el nombre del struct raíz: "CreateOrderRequest.products[0].quantity" -> "products[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener al menos %s elemento(s)", fe.Param())
		}
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "max":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "debe ser un email válido"
	case "money":
		return "debe tener como máximo 2 decimales y ser menor que " + MaxMoney.String()
	case "uuid":
		return "debe ser un UUID válido"
	default:
		return fmt.Sprintf("no cumple la regla %s", fe.Tag())
	}
}
