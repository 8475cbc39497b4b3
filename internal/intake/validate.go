package intake

import (
	"errors"
	"strings"

	"application-service/internal/form"

	"github.com/go-playground/validator/v10"
)

// Result is the outcome of one validation pass. FieldErrors holds one
// message per violated rule keyed by input name; Order preserves the page
// order of violations so the view can scroll to the first one.
type Result struct {
	Valid       bool
	FieldErrors map[string]string
	Order       []string
}

// First returns the input name of the first violation, or "" when valid.
func (r *Result) First() string {
	if len(r.Order) == 0 {
		return ""
	}
	return r.Order[0]
}

func (r *Result) add(field, message string) {
	if _, dup := r.FieldErrors[field]; dup {
		return
	}
	r.FieldErrors[field] = message
	r.Order = append(r.Order, field)
}

var fieldMessages = map[string]string{
	"nrc":   "NRC must be in format XXXXXX/XX/X or 9 digits.",
	"cell":  "Enter a valid cell number (0XXXXXXXXX or +260XXXXXXXXX).",
	"email": "Enter a valid email address.",
}

// Validate gates progression to the review step. Rules run in a fixed
// order: required fields, then format checks on fields that are present,
// then subjects and grades, then attestations, then file presence. A form
// that fails here is never submitted.
func Validate(v *validator.Validate, f *Form) *Result {
	res := &Result{FieldErrors: make(map[string]string)}

	for _, name := range requiredFields {
		if strings.TrimSpace(f.fieldValue(name)) == "" {
			res.add(name, "This field is required.")
		}
	}

	if err := v.Struct(&f.Record); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				name := fieldName(fe)
				// Required-ness was already reported above; format
				// messages only apply to fields that are present.
				if fe.Tag() == "required" || strings.TrimSpace(f.fieldValue(name)) == "" {
					continue
				}
				if msg, ok := fieldMessages[name]; ok {
					res.add(name, msg)
				}
			}
		}
	}

	if msg := form.CheckSubjects(f.Record.Subjects); msg != "" {
		res.add("subjects", msg)
	}

	if !f.Record.IdentityConfirmed || !f.Record.IntentConfirmed || !f.Record.IntegrityConfirmed {
		res.add("attestations", "All three confirmations must be ticked before submitting.")
	}

	if f.Results == nil {
		res.add("results", "School results or certificate file is required.")
	}
	if f.ProofOfPayment == nil {
		res.add("proofOfPayment", "Proof of payment (Zanaco Bill Muster receipt) is required.")
	}

	res.Valid = len(res.FieldErrors) == 0
	return res
}

// fieldName maps a struct field violation back to its input name via the
// json tag carried on the Application struct.
func fieldName(fe validator.FieldError) string {
	switch fe.StructField() {
	case "NRC":
		return "nrc"
	case "Cell":
		return "cell"
	case "Email":
		return "email"
	case "Surname":
		return "surname"
	case "Firstname":
		return "firstname"
	default:
		return strings.ToLower(fe.StructField())
	}
}
