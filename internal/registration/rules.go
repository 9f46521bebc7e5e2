package registration

import (
	"regexp"
	"strings"
	"unicode"

	validator "github.com/go-playground/validator/v10"
)

var (
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	mobilePattern  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// RegisterValidations installs the GSTIN, mobile, pincode and password tags on v.
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"gstin":           matchTag(gstinPattern),
		"in_mobile":       matchTag(mobilePattern),
		"pincode":         matchTag(pincodePattern),
		"strong_password": func(fl validator.FieldLevel) bool { return StrongPassword(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func matchTag(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// StrongPassword requires eight characters mixing upper, lower, digit and a special character.
func StrongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
