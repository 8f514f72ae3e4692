package student

import (
	"context"
	"errors"
	"strings"

	"github.com/konatebeh20/EduTrack/core"
)

var (
	// errors
	ErrNotFound           = errors.New("student not found")
	ErrCourseUnitNotFound = errors.New("course unit not found")
	ErrCodeExists         = errors.New("a student with this registration code already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		UpsertStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByRegistrationCode(ctx context.Context, code string) (Student, error)
		// FilterStudents applies AND operation on available CohortFilter fields,
		// ordered by (surname, given name, id).
		FilterStudents(ctx context.Context, filter CohortFilter) ([]Student, error)

		UpsertCourseUnit(ctx context.Context, cu CourseUnit) (CourseUnit, error)
		GetCourseUnitByCode(ctx context.Context, code string) (CourseUnit, error)

		UpsertGrade(ctx context.Context, rec GradeRecord) (GradeRecord, error)
		// QueryStudentGrades returns a student's grade records, ordered by course code.
		QueryStudentGrades(ctx context.Context, studentID int, term string) ([]GradeRecord, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByRegistrationCode(ctx context.Context, code string) (Student, error) {
	return svc.repo.GetStudentByRegistrationCode(ctx, core.CleanString(code, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter CohortFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) GetCourseUnit(ctx context.Context, code string) (CourseUnit, error) {
	return svc.repo.GetCourseUnitByCode(ctx, strings.ToUpper(core.CleanString(code)))
}

func (svc *Service) Grades(ctx context.Context, studentID int, term string) ([]GradeRecord, error) {
	return svc.repo.QueryStudentGrades(ctx, studentID, term)
}
