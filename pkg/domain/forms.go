package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxImageSize is the largest accepted profile or menu image (5 MiB).
const MaxImageSize = 5 << 20

// ErrInvalidForm is wrapped by every FormError.
var ErrInvalidForm = errors.New("invalid form")

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"oneof=image/jpeg image/jpg image/png"`
	Data        []byte `validate:"min=1,max=5242880"`
}

// LoginForm is the payload of POST /auth/login.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the payload of POST /auth/register.
type RegisterForm struct {
	Name         string  `json:"name" validate:"required,min=2,max=50"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone,omitempty" validate:"omitempty,phone"`
	Password     string  `json:"password" validate:"required,min=6"`
	ProfileImage *Upload `json:"profile_image,omitempty" validate:"omitempty"`
}

// OTPForm is the payload of POST /auth/verify-otp.
type OTPForm struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,otp"`
}

// BookingForm is the payload of POST /bookings.
type BookingForm struct {
	Name         string `json:"name" validate:"required,min=2,max=50"`
	Phone        string `json:"phone" validate:"required,phone"`
	Date         string `json:"date" validate:"required,isodate"`
	Time         string `json:"time" validate:"required,clock"`
	TotalPersons int    `json:"totalPersons" validate:"min=1,max=12"`
}

// MenuItemForm is the payload of POST /menu/item and PUT /menu/items/:id.
type MenuItemForm struct {
	Title       string          `json:"title" validate:"required,min=2,max=50"`
	Description string          `json:"description" validate:"required,min=8,max=200"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Category    Category        `json:"category" validate:"required,category"`
	Image       *Upload         `json:"image,omitempty" validate:"omitempty"`
}

// FormError lists the failed fields of a form, keyed by wire name.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return ErrInvalidForm }

// Field returns the message for one field, or "" when it passed.
func (e *FormError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]*$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			d, ok := field.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "otp", func(fl validator.FieldLevel) bool {
			return otpPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.DateOnly, fl.Field().String())
			return err == nil
		})
		mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		mustRegister(v, "category", func(fl validator.FieldLevel) bool {
			return ValidCategory(Category(fl.Field().String()))
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("domain: register %s validation: %v", tag, err))
	}
}

// Validate checks a form struct. It returns nil or a *FormError.
func Validate(form any) error {
	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("domain.Validate: %w", err)
	}
	fe := &FormError{Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		key := fieldKey(v)
		if _, seen := fe.Fields[key]; seen {
			continue
		}
		fe.Fields[key] = fieldMessage(v)
	}
	return fe
}

// fieldKey flattens nested upload fields onto their parent, so an oversized
// profile image is reported under "profile_image".
func fieldKey(v validator.FieldError) string {
	ns := strings.Split(v.Namespace(), ".")
	if len(ns) > 2 {
		return ns[1]
	}
	return v.Field()
}

func fieldMessage(v validator.FieldError) string {
	label := fieldLabel(fieldKey(v))
	switch v.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "phone":
		return "Invalid phone number"
	case "otp":
		return "OTP must be 6 digits"
	case "isodate":
		return "Date must be YYYY-MM-DD"
	case "clock":
		return "Time must be HH:MM"
	case "category":
		return "Unknown category"
	case "oneof":
		return "Only image files are allowed"
	case "min":
		if v.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be at least %s", label, v.Param())
		}
		if v.Kind() == reflect.Slice {
			return label + " is empty"
		}
		return fmt.Sprintf("%s must be at least %s characters", label, v.Param())
	case "max":
		if v.Kind() == reflect.Int {
			return fmt.Sprintf("%s must be at most %s", label, v.Param())
		}
		if v.Kind() == reflect.Slice {
			return "File is too large (max 5MB)"
		}
		return fmt.Sprintf("%s must be less than %s characters", label, v.Param())
	case "gt":
		return label + " must be greater than " + v.Param()
	}
	return label + " is invalid"
}

var fieldLabels = map[string]string{
	"name":          "Name",
	"email":         "Email",
	"phone":         "Phone",
	"password":      "Password",
	"profile_image": "Profile image",
	"otp":           "OTP",
	"date":          "Date",
	"time":          "Time",
	"totalPersons":  "Total persons",
	"title":         "Title",
	"description":   "Description",
	"price":         "Price",
	"category":      "Category",
	"image":         "Image",
}

func fieldLabel(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return key
}
