package form

// Fixed payment details shown to every applicant. These are constants of the
// admissions process, never user input.
const (
	ApplicationFee = "K100"
	PaymentMethod  = "Zanaco Bill Muster"
	BankAccount    = "0596204400114"
)

// SubjectGrade is one (subject, grade) pair from the applicant's school
// results. Grade is a single character "1" through "9".
type SubjectGrade struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

// Application is the canonical admissions submission record. All values are
// strings as they arrive from the form; validation interprets them.
type Application struct {
	// Identity
	Surname     string `json:"surname" validate:"required"`
	Firstname   string `json:"firstname" validate:"required"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dob"`
	NRC         string `json:"nrc" validate:"required,nrc"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`
	Cell        string `json:"cell" validate:"omitempty,zmcell"`
	Email       string `json:"email" validate:"omitempty,email"`

	// Education
	LastSchool         string         `json:"lastSchool"`
	EducationAttained  string         `json:"educationAttained"`
	YearCompleted      string         `json:"yearCompleted"`
	Subjects           []SubjectGrade `json:"subjectsGrades"`
	PrevQualifications string         `json:"prevQualifications"`

	// Programme selection
	Choice1 string `json:"choice1"`
	Choice2 string `json:"choice2"`
	Mode    string `json:"mode"`
	Level   string `json:"level"`

	// Sponsor
	SponsorName       string `json:"sponsorName"`
	SponsorCell       string `json:"sponsorCell"`
	SponsorPostal     string `json:"sponsorPostal"`
	SponsorOccupation string `json:"sponsorOccupation"`
	SponsorEmail      string `json:"sponsorEmail"`
	SponsorRelation   string `json:"sponsorRelation"`

	// Attestations
	IdentityConfirmed  bool `json:"identityCheck"`
	IntentConfirmed    bool `json:"intentCheck"`
	IntegrityConfirmed bool `json:"integrityCheck"`

	ApplicationDate string `json:"applicationDate"`
}

// Attachment is one uploaded file held in memory for the duration of a single
// submission. Field is the multipart field name it arrived under.
type Attachment struct {
	Field       string `json:"-"`
	Filename    string `json:"name"`
	ContentType string `json:"type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// Checked reports whether a checkbox wire value means "ticked". Browsers send
// "on" for plain checkboxes, the intake client sends "true".
func Checked(v string) bool {
	return v == "on" || v == "true"
}
