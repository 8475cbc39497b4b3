package form

import (
	"html"
	"strings"
)

// Sanitize trims and HTML-escapes one text field so it is safe to embed in
// the HTML email body later.
func Sanitize(v string) string {
	return html.EscapeString(strings.TrimSpace(v))
}

// SanitizeApplication cleans every text field in place. The NRC is only
// trimmed: escaping would not touch its slashes, but the format was already
// checked on the raw value and the canonical record keeps it as entered.
func SanitizeApplication(a *Application) {
	a.Surname = Sanitize(a.Surname)
	a.Firstname = Sanitize(a.Firstname)
	a.Gender = Sanitize(a.Gender)
	a.DateOfBirth = Sanitize(a.DateOfBirth)
	a.NRC = strings.TrimSpace(a.NRC)
	a.Nationality = Sanitize(a.Nationality)
	a.Address = Sanitize(a.Address)
	a.Cell = Sanitize(a.Cell)
	a.Email = Sanitize(a.Email)
	a.LastSchool = Sanitize(a.LastSchool)
	a.EducationAttained = Sanitize(a.EducationAttained)
	a.YearCompleted = Sanitize(a.YearCompleted)
	a.PrevQualifications = Sanitize(a.PrevQualifications)
	a.Choice1 = Sanitize(a.Choice1)
	a.Choice2 = Sanitize(a.Choice2)
	a.Mode = Sanitize(a.Mode)
	a.Level = Sanitize(a.Level)
	a.SponsorName = Sanitize(a.SponsorName)
	a.SponsorCell = Sanitize(a.SponsorCell)
	a.SponsorPostal = Sanitize(a.SponsorPostal)
	a.SponsorOccupation = Sanitize(a.SponsorOccupation)
	a.SponsorEmail = Sanitize(a.SponsorEmail)
	a.SponsorRelation = Sanitize(a.SponsorRelation)
	a.ApplicationDate = Sanitize(a.ApplicationDate)
	for i := range a.Subjects {
		a.Subjects[i].Subject = Sanitize(a.Subjects[i].Subject)
		a.Subjects[i].Grade = Sanitize(a.Subjects[i].Grade)
	}
}
