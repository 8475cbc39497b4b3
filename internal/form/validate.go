package form

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	nrcSlashed = regexp.MustCompile(`^\d{6}/\d{2}/\d$`)
	nrcPlain   = regexp.MustCompile(`^\d{9}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Loose wire-side phone rule: digits plus common separators.
	phoneWire = regexp.MustCompile(`^[0-9+\-\s()]{7,20}$`)
	nonDigit  = regexp.MustCompile(`\D`)
)

// ValidNRC accepts a Zambian NRC in either textual form: 123456/78/9 or
// nine consecutive digits.
func ValidNRC(v string) bool {
	v = strings.TrimSpace(v)
	return nrcSlashed.MatchString(v) || nrcPlain.MatchString(v)
}

// ValidCell accepts a Zambian cell number: 10 digits starting with 0, or
// 12 digits starting with 260. Separators and a leading + are ignored.
func ValidCell(v string) bool {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) == 10 && strings.HasPrefix(digits, "0") {
		return true
	}
	if len(digits) == 12 && strings.HasPrefix(digits, "260") {
		return true
	}
	return false
}

// ValidPhoneWire is the relay's looser phone check, applied to the raw wire
// value when present.
func ValidPhoneWire(v string) bool {
	return phoneWire.MatchString(v)
}

func ValidEmail(v string) bool {
	return emailRe.MatchString(strings.TrimSpace(v))
}

// ValidGrade accepts a single character between "1" and "9".
func ValidGrade(g string) bool {
	return len(g) == 1 && g[0] >= '1' && g[0] <= '9'
}

// CheckSubjects validates a subject/grade list: at least one entry, every
// grade in range, no duplicate subject names case-insensitively. It returns
// an empty string when the list is valid, otherwise a message describing the
// first violation.
func CheckSubjects(subjects []SubjectGrade) string {
	if len(subjects) == 0 {
		return "At least one subject with a grade is required."
	}
	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		name := strings.ToLower(strings.TrimSpace(s.Subject))
		if name == "" {
			return "Subject name cannot be empty."
		}
		if seen[name] {
			return "Duplicate subject: " + strings.TrimSpace(s.Subject)
		}
		seen[name] = true
		if !ValidGrade(s.Grade) {
			return "Grade for " + strings.TrimSpace(s.Subject) + " must be between 1 and 9."
		}
	}
	return ""
}

// FormatNRC rewrites a digits-only NRC value into the slashed XXXXXX/XX/X
// form, truncating anything past nine digits.
func FormatNRC(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) > 9 {
		digits = digits[:9]
	}
	switch {
	case len(digits) <= 6:
		return digits
	case len(digits) <= 8:
		return digits[:6] + "/" + digits[6:]
	default:
		return digits[:6] + "/" + digits[6:8] + "/" + digits[8:]
	}
}

// NewValidator returns a validator with the domain tags registered, so the
// Application struct tags (nrc, zmcell) work alongside the built-in ones.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nrc", func(fl validator.FieldLevel) bool {
		return ValidNRC(fl.Field().String())
	})
	_ = v.RegisterValidation("zmcell", func(fl validator.FieldLevel) bool {
		return ValidCell(fl.Field().String())
	})
	return v
}
