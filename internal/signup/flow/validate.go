package flow

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
	"github.com/go-playground/validator/v10"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("in_mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	// regexp's \s is ASCII only, so other Unicode spaces are rejected first.
	_ = v.RegisterValidation("signup_email", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return !strings.ContainsFunc(s, unicode.IsSpace) && emailPattern.MatchString(s)
	})

	return v
}

// fieldRule runs a validator tag chain against a single value. Messages are
// keyed by the tag that failed first.
type fieldRule struct {
	field    domain.Field
	tags     string
	messages map[string]string
}

var (
	phoneRule = fieldRule{
		field: domain.FieldPhone,
		tags:  "required,in_mobile",
		messages: map[string]string{
			"required":  domain.MsgPhoneRequired,
			"in_mobile": domain.MsgPhoneInvalid,
		},
	}
	fullNameRule = fieldRule{
		field:    domain.FieldFullName,
		tags:     "required",
		messages: map[string]string{"required": domain.MsgFullNameRequired},
	}
	emailRule = fieldRule{
		field: domain.FieldEmail,
		tags:  "required,signup_email",
		messages: map[string]string{
			"required":     domain.MsgEmailRequired,
			"signup_email": domain.MsgEmailInvalid,
		},
	}
)

func (r fieldRule) check(value string) (string, bool) {
	err := validate.Var(value, r.tags)
	if err == nil {
		return "", true
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		if msg, ok := r.messages[ve[0].Tag()]; ok {
			return msg, false
		}
	}
	return domain.MsgGeneral, false
}

// validatePhone returns the first failing field, in the order phone then
// agreement. ok is true when the phone step may be left.
func validatePhone(phoneNumber string, termsAccepted bool) (domain.Field, string, bool) {
	if msg, ok := phoneRule.check(stripWhitespace(phoneNumber)); !ok {
		return phoneRule.field, msg, false
	}
	if !termsAccepted {
		return domain.FieldAgreement, domain.MsgTermsRequired, false
	}
	return "", "", true
}

func validateProfile(fullName, email string) (domain.Field, string, bool) {
	if msg, ok := fullNameRule.check(strings.TrimSpace(fullName)); !ok {
		return fullNameRule.field, msg, false
	}
	if msg, ok := emailRule.check(strings.TrimSpace(email)); !ok {
		return emailRule.field, msg, false
	}
	return "", "", true
}

// validDigit accepts the empty string (a cleared box) or one ASCII digit.
func validDigit(value string) bool {
	if value == "" {
		return true
	}
	return len(value) == 1 && value[0] >= '0' && value[0] <= '9'
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
