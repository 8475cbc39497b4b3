package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"application-service/internal/form"
)

// Text fields in the application were HTML-escaped during sanitization, so
// the HTML template re-injects them verbatim.
var htmlBody = template.Must(template.New("html").Funcs(template.FuncMap{
	"raw": func(s string) template.HTML { return template.HTML(s) },
	"kb":  func(size int64) int64 { return size / 1024 },
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1>New Application Submission</h1>
  <p>Craw Hammer Trades School - Application Portal</p>

  <h2>Applicant Personal Details</h2>
  <p>First Name: {{raw .App.Firstname}}<br>
  Surname: {{raw .App.Surname}}<br>
  Gender: {{raw .App.Gender}}<br>
  Date of Birth: {{raw .App.DateOfBirth}}<br>
  NRC Number: {{.App.NRC}}<br>
  Nationality: {{raw .App.Nationality}}<br>
  Residential Address: {{raw .App.Address}}<br>
  Cell Number: {{raw .App.Cell}}<br>
  Email Address: {{raw .App.Email}}</p>

  <h2>Educational Background</h2>
  <p>Last School Attended: {{raw .App.LastSchool}}<br>
  Education Level: {{raw .App.EducationAttained}}<br>
  Year Completed: {{raw .App.YearCompleted}}<br>
  Previous Qualifications: {{raw .App.PrevQualifications}}</p>
  <p><strong>Selected Subjects &amp; Grades:</strong></p>
  {{if .App.Subjects}}
  <ol>
  {{range .App.Subjects}}<li>{{raw .Subject}} - Grade <strong>{{raw .Grade}}</strong></li>
  {{end}}</ol>
  {{else}}<p>No subjects selected</p>{{end}}

  <h2>Course Selection</h2>
  <p>1st Choice: {{raw .App.Choice1}}<br>
  2nd Choice: {{raw .App.Choice2}}</p>

  <h2>Study Preferences</h2>
  <p>Mode of Study: {{raw .App.Mode}}<br>
  Level of Study: {{raw .App.Level}}</p>

  <h2>Sponsor Information</h2>
  <p>Sponsor Name: {{raw .App.SponsorName}}<br>
  Relationship: {{raw .App.SponsorRelation}}<br>
  Occupation: {{raw .App.SponsorOccupation}}<br>
  Email: {{raw .App.SponsorEmail}}<br>
  Cell Number: {{raw .App.SponsorCell}}<br>
  Postal Address: {{raw .App.SponsorPostal}}</p>

  <h2>Application Payment</h2>
  <p>Application Fee: <strong>{{.Fee}}</strong><br>
  Payment Method: {{.Method}}<br>
  Bank Account: <strong>{{.Account}}</strong></p>

  <h2>Attached Files ({{len .Attachments}})</h2>
  <ul>
  {{range .Attachments}}<li><strong>{{.Filename}}</strong> ({{kb .Size}} KB)</li>
  {{end}}</ul>

  <h2>Application Confirmations</h2>
  <p>Identity Confirmed: {{yesno .App.IdentityConfirmed}}<br>
  Intent Confirmed: {{yesno .App.IntentConfirmed}}<br>
  Integrity Confirmed: {{yesno .App.IntegrityConfirmed}}<br>
  Application Date: {{raw .App.ApplicationDate}}</p>

  <hr>
  <p style="font-size: 12px; color: #666;">This is an automated email from the Craw Hammer Trades School Application Portal.<br>
  Application submitted at {{.SubmittedAt}}</p>
</body>
</html>
`))

type bodyData struct {
	App         *form.Application
	Attachments []form.Attachment
	Fee         string
	Method      string
	Account     string
	SubmittedAt string
}

// Compose renders an Application into a ready-to-send Message. The sender
// falls back to the configured from address when the applicant gave no email,
// and Reply-To lets the admissions team answer the applicant directly.
func Compose(app *form.Application, attachments []form.Attachment, from, to string) (*Message, error) {
	data := bodyData{
		App:         app,
		Attachments: attachments,
		Fee:         form.ApplicationFee,
		Method:      form.PaymentMethod,
		Account:     form.BankAccount,
		SubmittedAt: submittedAt(),
	}

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	msg := &Message{
		From:        from,
		To:          to,
		Subject:     fmt.Sprintf("New application: %s %s", app.Surname, app.Firstname),
		Text:        textBody(data),
		HTML:        html.String(),
		Attachments: attachments,
	}
	if app.Email != "" {
		msg.From = app.Email
		msg.ReplyTo = app.Email
	}
	return msg, nil
}

func textBody(d bodyData) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Application received from %s %s\n\n", d.App.Surname, d.App.Firstname)

	fmt.Fprintf(&b, "=== APPLICANT PERSONAL DETAILS ===\n")
	fmt.Fprintf(&b, "Name: %s %s\n", d.App.Firstname, d.App.Surname)
	fmt.Fprintf(&b, "Email: %s\n", d.App.Email)
	fmt.Fprintf(&b, "Cell: %s\n", d.App.Cell)
	fmt.Fprintf(&b, "NRC: %s\n\n", d.App.NRC)

	fmt.Fprintf(&b, "=== EDUCATIONAL BACKGROUND ===\n")
	fmt.Fprintf(&b, "Last School: %s\n", d.App.LastSchool)
	fmt.Fprintf(&b, "Education Level: %s\n", d.App.EducationAttained)
	fmt.Fprintf(&b, "Year Completed: %s\n", d.App.YearCompleted)
	fmt.Fprintf(&b, "Subjects & Grades:\n")
	if len(d.App.Subjects) == 0 {
		fmt.Fprintf(&b, "  No subjects recorded\n")
	}
	for i, s := range d.App.Subjects {
		fmt.Fprintf(&b, "  %d. %s - Grade %s\n", i+1, s.Subject, s.Grade)
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "=== COURSE SELECTION ===\n")
	fmt.Fprintf(&b, "1st Choice: %s\n", d.App.Choice1)
	fmt.Fprintf(&b, "2nd Choice: %s\n\n", d.App.Choice2)

	fmt.Fprintf(&b, "=== STUDY PREFERENCES ===\n")
	fmt.Fprintf(&b, "Mode: %s\n", d.App.Mode)
	fmt.Fprintf(&b, "Level: %s\n\n", d.App.Level)

	fmt.Fprintf(&b, "=== SPONSOR INFORMATION ===\n")
	fmt.Fprintf(&b, "Name: %s\n", d.App.SponsorName)
	fmt.Fprintf(&b, "Relationship: %s\n", d.App.SponsorRelation)
	fmt.Fprintf(&b, "Email: %s\n\n", d.App.SponsorEmail)

	fmt.Fprintf(&b, "=== PAYMENT INFORMATION ===\n")
	fmt.Fprintf(&b, "Application Fee: %s\n", d.Fee)
	fmt.Fprintf(&b, "Payment Method: %s\n", d.Method)
	fmt.Fprintf(&b, "Bank Account: %s\n\n", d.Account)

	fmt.Fprintf(&b, "=== ATTACHED FILES ===\n")
	for _, f := range d.Attachments {
		fmt.Fprintf(&b, "%s (%d KB)\n", f.Filename, f.Size/1024)
	}

	return b.String()
}

func submittedAt() string {
	loc, err := time.LoadLocation("Africa/Lusaka")
	if err != nil {
		loc = time.UTC
	}
	return time.Now().In(loc).Format("02 Jan 2006 15:04:05 MST")
}
