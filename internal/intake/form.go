// Package intake is the applicant-facing half of the submission pipeline:
// it validates a partially-typed application form, stages the validated
// record and its file bytes across the fill-in and review steps of one
// session, and posts the final draft to the relay service.
package intake

import "application-service/internal/form"

// Form is one in-progress application: the canonical record being assembled
// field by field, plus the applicant's file selections. Files are held
// whole in memory because the final submission needs the raw bytes.
type Form struct {
	Record form.Application

	ProofOfPayment *form.Attachment
	Results        *form.Attachment
	Attachments    []form.Attachment
}

// requiredFields is the fixed list gating progression to the review step,
// in the order the inputs appear on the page.
var requiredFields = []string{"surname", "firstname", "address", "nrc", "cell"}

func (f *Form) fieldValue(name string) string {
	switch name {
	case "surname":
		return f.Record.Surname
	case "firstname":
		return f.Record.Firstname
	case "address":
		return f.Record.Address
	case "nrc":
		return f.Record.NRC
	case "cell":
		return f.Record.Cell
	default:
		return ""
	}
}

// AllFiles returns every selected file in submission order: proof of
// payment, results, then supplementary attachments.
func (f *Form) AllFiles() []form.Attachment {
	var files []form.Attachment
	if f.ProofOfPayment != nil {
		files = append(files, *f.ProofOfPayment)
	}
	if f.Results != nil {
		files = append(files, *f.Results)
	}
	return append(files, f.Attachments...)
}
