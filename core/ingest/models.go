package ingest

// Row is one parsed spreadsheet row: a mapping from declared column
// name to raw cell value. How it was parsed is the ingestor's concern;
// this package only validates and maps it.
type Row map[string]string

// Column names the import sources must declare.
const (
	ColSurname          = "surname"
	ColGivenName        = "given_name"
	ColEmail            = "email"
	ColGender           = "gender"
	ColBirthDate        = "birth_date"
	ColBirthPlace       = "birth_place"
	ColRegistrationCode = "registration_code"
	ColProgram          = "program"

	ColCourseCode  = "code"
	ColCourseLabel = "label"
	ColWeight      = "weight"

	ColGradeCourse = "course_code"
	ColTerm        = "term"
	ColScore       = "score"
)

var (
	studentColumns = []string{ColSurname, ColGivenName, ColEmail, ColRegistrationCode}
	courseColumns  = []string{ColCourseCode, ColCourseLabel, ColWeight}
	gradeColumns   = []string{ColRegistrationCode, ColGradeCourse, ColTerm, ColScore}
)

// StudentRow is a validated student import line.
type StudentRow struct {
	Surname          string `json:"surname" validate:"required"`
	GivenName        string `json:"given_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Gender           string `json:"gender" validate:"omitempty,oneof=M F"`
	BirthDate        string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	BirthPlace       string `json:"birth_place"`
	RegistrationCode string `json:"registration_code" validate:"required,alphanum"`
	Program          string `json:"program"`
}

// CourseUnitRow is a validated course unit import line. A weight that is
// not strictly positive never reaches the store.
type CourseUnitRow struct {
	Code   string `json:"code" validate:"required,coursecode"`
	Label  string `json:"label" validate:"required"`
	Weight int    `json:"weight" validate:"required,gt=0"`
}

// GradeImportRow is a validated grade import line. Score bounds are
// checked against the configured grading scale, not by tag.
type GradeImportRow struct {
	RegistrationCode string `json:"registration_code" validate:"required,alphanum"`
	CourseCode       string `json:"course_code" validate:"required,coursecode"`
	Term             string `json:"term" validate:"required"`
	Score            string `json:"score" validate:"required"`
}

// ImportSummary reports what one import call did.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Rejected int      `json:"rejected"`
	Reasons  []string `json:"reasons"` // first maxReasons only
}

const maxReasons = 20

func (s *ImportSummary) reject(reason string) {
	s.Rejected++
	if len(s.Reasons) < maxReasons {
		s.Reasons = append(s.Reasons, reason)
	}
}
