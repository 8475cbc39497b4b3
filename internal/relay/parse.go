package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"application-service/internal/form"
)

var errNotMultipart = errors.New("expected multipart/form-data")

// Submission is the raw wire content of one POST /submit: every text field
// as it arrived, untyped, plus the uploaded file parts in order.
type Submission struct {
	Fields      map[string]string
	Attachments []form.Attachment
}

// parseMultipart streams the request body, buffering file parts in memory.
// The per-file ceiling is enforced here, while reading, before any
// validation runs.
func parseMultipart(r *http.Request, maxFileBytes int64) (*Submission, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errNotMultipart
	}

	sub := &Submission{Fields: make(map[string]string)}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart: %w", err)
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, 1<<20))
			part.Close()
			if err != nil {
				return nil, fmt.Errorf("read field %s: %w", part.FormName(), err)
			}
			sub.Fields[part.FormName()] = string(value)
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxFileBytes+1))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", part.FileName(), err)
		}
		if int64(len(data)) > maxFileBytes {
			return nil, form.ErrFileTooLarge
		}
		sub.Attachments = append(sub.Attachments, form.Attachment{
			Field:       part.FormName(),
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Size:        int64(len(data)),
			Data:        data,
		})
	}
	return sub, nil
}

// missingRequired returns the required field names absent from the wire, in
// a fixed order so the error message is stable.
func (s *Submission) missingRequired() []string {
	var missing []string
	for _, name := range []string{"surname", "firstname", "nrc"} {
		if strings.TrimSpace(s.Fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// toApplication maps the untyped wire fields onto the canonical record. The
// subjectsGrades field is a JSON array; a malformed value degrades to an
// empty list rather than failing the whole submission, matching the lenient
// rendering the email does.
func (s *Submission) toApplication() *form.Application {
	f := s.Fields
	app := &form.Application{
		Surname:            f["surname"],
		Firstname:          f["firstname"],
		Gender:             f["gender"],
		DateOfBirth:        f["dob"],
		NRC:                f["nrc"],
		Nationality:        f["nationality"],
		Address:            f["address"],
		Cell:               f["cell"],
		Email:              f["email"],
		LastSchool:         f["lastSchool"],
		EducationAttained:  f["educationAttained"],
		YearCompleted:      f["yearCompleted"],
		PrevQualifications: f["prevQualifications"],
		Choice1:            f["choice1"],
		Choice2:            f["choice2"],
		Mode:               f["mode"],
		Level:              f["level"],
		SponsorName:        f["sponsorName"],
		SponsorCell:        f["sponsorCell"],
		SponsorPostal:      f["sponsorPostal"],
		SponsorOccupation:  f["sponsorOccupation"],
		SponsorEmail:       f["sponsorEmail"],
		SponsorRelation:    f["sponsorRelation"],
		IdentityConfirmed:  form.Checked(f["identityCheck"]),
		IntentConfirmed:    form.Checked(f["intentCheck"]),
		IntegrityConfirmed: form.Checked(f["integrityCheck"]),
		ApplicationDate:    f["applicationDate"],
	}
	if raw := f["subjectsGrades"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &app.Subjects)
	}
	return app
}
