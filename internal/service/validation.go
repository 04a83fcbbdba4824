package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&#"

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)
	validate        = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors back to their payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	mustRegister(v, "website", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.")
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// isStrongPassword: at least 8 characters drawn from letters, digits and passwordSpecials,
// with at least one of each class.
func isStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var letter, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return letter && digit && special
}

// checkStruct runs tag validation and folds failures into one invalid-input error.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fe = append(fe, FieldError{Field: e.Field(), Message: message(e)})
	}
	return NewInvalidInputError(fe)
}

func message(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if isString {
			return "length must be at least " + e.Param()
		}
		return "must be >= " + e.Param()
	case "max":
		if isString {
			return "length must be at most " + e.Param()
		}
		return "must be <= " + e.Param()
	case "email":
		return "must be a valid email address"
	case "alphaunicode":
		return "must contain letters only"
	case "username":
		return "must start with a letter and contain only letters, digits, '_', '.' or '-'"
	case "password":
		return "must be at least 8 characters with a letter, a digit and one of " + passwordSpecials
	case "website":
		return "must start with http://, https:// or www."
	default:
		return "is invalid"
	}
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required,min=3,max=50,alphaunicode"`
	LastName  string `json:"last_name" validate:"required,min=3,max=50,alphaunicode"`
	Username  string `json:"username" validate:"required,max=64,username"`
	Email     string `json:"email" validate:"required,max=120,email"`
	Password  string `json:"password" validate:"required,password"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// UpdateUserInput is a partial profile update. Changing the password requires OldPassword.
type UpdateUserInput struct {
	FirstName   *string `json:"first_name" validate:"omitnil,min=3,max=50,alphaunicode"`
	LastName    *string `json:"last_name" validate:"omitnil,min=3,max=50,alphaunicode"`
	Username    *string `json:"username" validate:"omitnil,max=64,username"`
	Email       *string `json:"email" validate:"omitnil,max=120,email"`
	Password    *string `json:"password" validate:"omitnil,password"`
	OldPassword *string `json:"old_password"`
}

type ArtistInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Image       string `json:"image" validate:"max=255"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	Website     string `json:"website" validate:"required,min=10,max=500,website"`
}

func (in *ArtistInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Website = strings.TrimSpace(in.Website)
}

type ProductInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=84"`
	Deadline    int      `json:"deadline" validate:"min=1"`
	Goal        int      `json:"goal" validate:"min=1"`
	Price       int      `json:"price" validate:"min=0"`
	ArtistName  string   `json:"artist_name" validate:"required,max=120"`
	MainImage   string   `json:"mainImage" validate:"max=255"`
	SubImages   []string `json:"subImages" validate:"dive,required,max=255"`
	Composition string   `json:"composition" validate:"max=255"`
	Color       string   `json:"color" validate:"max=64"`
	Style       string   `json:"style" validate:"max=64"`
	Quantity    int      `json:"quantity" validate:"min=0"`
	Sizes       []string `json:"sizes" validate:"dive,required,max=16"`
}

func (in *ProductInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.ArtistName = strings.TrimSpace(in.ArtistName)
	in.Sizes = splitSizes(in.Sizes)
}

// ProductPatch is a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Title       *string   `json:"title" validate:"omitnil,min=3,max=84"`
	Deadline    *int      `json:"deadline" validate:"omitnil,min=1"`
	Goal        *int      `json:"goal" validate:"omitnil,min=1"`
	Price       *int      `json:"price" validate:"omitnil,min=0"`
	ArtistName  *string   `json:"artist_name" validate:"omitnil,min=1,max=120"`
	MainImage   *string   `json:"mainImage" validate:"omitnil,max=255"`
	SubImages   *[]string `json:"subImages" validate:"omitnil,dive,required,max=255"`
	Composition *string   `json:"composition" validate:"omitnil,max=255"`
	Color       *string   `json:"color" validate:"omitnil,max=64"`
	Style       *string   `json:"style" validate:"omitnil,max=64"`
	Quantity    *int      `json:"quantity" validate:"omitnil,min=0"`
	Sizes       *[]string `json:"sizes" validate:"omitnil,dive,required,max=16"`
}

// splitSizes accepts a single comma-separated entry ("S, M, L") as shorthand for a list.
func splitSizes(sizes []string) []string {
	if len(sizes) != 1 || !strings.Contains(sizes[0], ",") {
		return sizes
	}
	parts := strings.Split(sizes[0], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

type CartInput struct {
	Size string `json:"size" validate:"max=16"`
}

// orderRecord guards what the payment provider hands back before it is persisted.
type orderRecord struct {
	Status    string `json:"status" validate:"required,max=100"`
	PaymentID string `json:"payment_id" validate:"required,max=100"`
}
