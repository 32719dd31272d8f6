package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"HRCore/utils"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// 错误字段名使用 json tag
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister("isodate", validateISODate)
	mustRegister("workmask", validateWorkMask)
	mustRegister("leavestate", func(fl validator.FieldLevel) bool { return oneOf(fl.Field().String(), "PEND", "APROB", "RECH", "CANC") })
	mustRegister("checkintype", func(fl validator.FieldLevel) bool { return oneOf(fl.Field().String(), "IN", "OUT") })
	mustRegister("curp", func(fl validator.FieldLevel) bool { return utils.ValidateCURP(fl.Field().String()) })
	mustRegister("rfc", func(fl validator.FieldLevel) bool { return utils.ValidateRFC(fl.Field().String()) })
	mustRegister("nss", func(fl validator.FieldLevel) bool { return utils.ValidateNSS(fl.Field().String()) })
}

func mustRegister(tag string, fn validator.Func) {
	if err := Validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(utils.DateLayout, fl.Field().String())
	return err == nil
}

func validateWorkMask(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := fl.Field().Int()
		return v >= 0 && v <= 127
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fl.Field().Uint() <= 127
	}
	return false
}

type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"message"`
}

// Struct 校验结构体，无错误时返回 nil
func Struct(s interface{}) []*FieldError {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*FieldError{{Field: "", Tag: "invalid", Msg: err.Error()}}
	}

	out := make([]*FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Msg:   message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("'%s' is required.", field)
	case "min", "gte":
		return fmt.Sprintf("'%s' must be at least %s.", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("'%s' must be at most %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of: %s.", field, fe.Param())
	case "isodate":
		return fmt.Sprintf("'%s' must be a date in YYYY-MM-DD format.", field)
	case "workmask":
		return fmt.Sprintf("'%s' must be a weekday bitmask between 0 and 127.", field)
	case "latitude":
		return fmt.Sprintf("'%s' must be within [-90, 90].", field)
	case "longitude":
		return fmt.Sprintf("'%s' must be within [-180, 180].", field)
	case "leavestate":
		return fmt.Sprintf("'%s' must be one of PEND, APROB, RECH, CANC.", field)
	case "checkintype":
		return fmt.Sprintf("'%s' must be IN or OUT.", field)
	case "curp", "rfc", "nss":
		return fmt.Sprintf("'%s' is not a valid %s.", field, strings.ToUpper(fe.Tag()))
	case "email":
		return "Invalid email format."
	default:
		return fmt.Sprintf("'%s' failed validation for tag '%s'.", field, fe.Tag())
	}
}
