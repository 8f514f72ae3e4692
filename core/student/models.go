package student

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Genders
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

type Program struct {
	ID     int    `json:"id" db:"id"`
	Label  string `json:"label" db:"label"`
	Domain string `json:"domain" db:"domain"`
}

type Student struct {
	ID               int       `json:"id" db:"id"`
	Surname          string    `json:"surname" db:"surname"`
	GivenName        string    `json:"given_name" db:"given_name"`
	Email            string    `json:"email" db:"email"`
	Gender           string    `json:"gender" db:"gender"`
	BirthDate        time.Time `json:"birth_date" db:"birth_date"`
	BirthPlace       string    `json:"birth_place" db:"birth_place"`
	RegistrationCode string    `json:"registration_code" db:"registration_code"`
	ProgramID        int       `json:"program_id" db:"program_id"`
	Program          Program   `json:"program" db:"-"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.Surname + " " + s.GivenName)
}

// CourseUnit is a gradable unit of instruction. Weight is the credit
// weight used in averaging and is always > 0 for stored units.
type CourseUnit struct {
	ID     int    `json:"id" db:"id"`
	Code   string `json:"code" db:"code"`
	Label  string `json:"label" db:"label"`
	Weight int    `json:"weight" db:"weight"`
}

// GradeRecord is unique per (student, course unit, term); a later import
// for the same key overwrites, never duplicates.
type GradeRecord struct {
	ID         int             `json:"id" db:"id"`
	StudentID  int             `json:"student_id" db:"student_id"`
	CourseCode string          `json:"course_code" db:"course_code"`
	Term       string          `json:"term" db:"term"`
	Score      decimal.Decimal `json:"score" db:"score"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

// CohortFilter selects the set of students processed together in one batch run.
type CohortFilter struct {
	Search  string `json:"search"`  // case-insensitive match on surname, given name or registration code
	Program string `json:"program"` // exact program label
}

func (f CohortFilter) IsEmpty() bool {
	return f.Search == "" && f.Program == ""
}
