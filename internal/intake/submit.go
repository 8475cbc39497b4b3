package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"application-service/internal/form"
)

// SubmitResult is the relay's answer as seen by the client.
type SubmitResult struct {
	OK             bool   `json:"ok"`
	EmailSent      bool   `json:"emailSent"`
	Message        string `json:"message,omitempty"`
	TechnicalError string `json:"technicalError,omitempty"`
	Error          string `json:"error,omitempty"`

	StatusCode int `json:"-"`
}

// Submitter posts a staged draft to the relay service as
// multipart/form-data, exactly the way the browser form would.
type Submitter struct {
	baseURL string
	client  *http.Client
}

func NewSubmitter(baseURL string) *Submitter {
	return &Submitter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *Submitter) Submit(ctx context.Context, draft *Draft) (*SubmitResult, error) {
	body, contentType, err := encodeDraft(draft)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/submit", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	result := &SubmitResult{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func encodeDraft(draft *Draft) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields, err := wireFields(&draft.Record)
	if err != nil {
		return nil, "", err
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range draft.Files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// wireFields flattens the record into the relay's field names. Attestations
// go out as "true"/"", mirroring checkbox semantics, and the subject list
// as its JSON form.
func wireFields(a *form.Application) (map[string]string, error) {
	subjects, err := json.Marshal(a.Subjects)
	if err != nil {
		return nil, fmt.Errorf("marshal subjects: %w", err)
	}

	return map[string]string{
		"surname":            a.Surname,
		"firstname":          a.Firstname,
		"gender":             a.Gender,
		"dob":                a.DateOfBirth,
		"nrc":                a.NRC,
		"nationality":        a.Nationality,
		"address":            a.Address,
		"cell":               a.Cell,
		"phone":              a.Cell,
		"email":              a.Email,
		"lastSchool":         a.LastSchool,
		"educationAttained":  a.EducationAttained,
		"yearCompleted":      a.YearCompleted,
		"prevQualifications": a.PrevQualifications,
		"subjectsGrades":     string(subjects),
		"choice1":            a.Choice1,
		"choice2":            a.Choice2,
		"mode":               a.Mode,
		"level":              a.Level,
		"sponsorName":        a.SponsorName,
		"sponsorCell":        a.SponsorCell,
		"sponsorPostal":      a.SponsorPostal,
		"sponsorOccupation":  a.SponsorOccupation,
		"sponsorRelation":    a.SponsorRelation,
		"sponsorEmail":       a.SponsorEmail,
		"identityCheck":      strconv.FormatBool(a.IdentityConfirmed),
		"intentCheck":        strconv.FormatBool(a.IntentConfirmed),
		"integrityCheck":     strconv.FormatBool(a.IntegrityConfirmed),
		"applicationDate":    a.ApplicationDate,
	}, nil
}
