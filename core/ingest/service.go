package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/student"
)

var (
	// errors
	ErrMissingColumn = errors.New("required column missing")
	ErrNoRows        = errors.New("source contains no rows")
)

// Service is the validated ingestion boundary: raw parsed rows in,
// well-typed records upserted through the student repository. Anything
// that fails validation here never reaches the aggregation core.
type Service struct {
	repo     student.Repository
	validate *validator.Validate
	conf     *core.Config
	logger   core.Logger
}

func NewService(repo student.Repository, validate *validator.Validate, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		conf:     conf,
		logger:   logger,
	}
}

// checkColumns fails fast when a required column is absent, before any
// row is processed.
func checkColumns(rows []Row, required []string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	for _, col := range required {
		if _, ok := rows[0][col]; !ok {
			return errors.Wrapf(ErrMissingColumn, "column %q", col)
		}
	}
	return nil
}

func (svc *Service) ImportStudents(ctx context.Context, rows []Row) (ImportSummary, error) {
	var summary ImportSummary
	if err := checkColumns(rows, studentColumns); err != nil {
		return summary, err
	}

	for i, row := range rows {
		sr := StudentRow{
			Surname:          core.CleanString(row[ColSurname]),
			GivenName:        core.CleanString(row[ColGivenName]),
			Email:            core.CleanString(row[ColEmail], true /* lower */),
			Gender:           core.CleanString(row[ColGender]),
			BirthDate:        core.CleanString(row[ColBirthDate]),
			BirthPlace:       core.CleanString(row[ColBirthPlace]),
			RegistrationCode: core.CleanString(row[ColRegistrationCode], true /* lower */),
			Program:          core.CleanString(row[ColProgram]),
		}
		if err := svc.validate.Struct(sr); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}

		std := student.Student{
			Surname:          sr.Surname,
			GivenName:        sr.GivenName,
			Email:            sr.Email,
			Gender:           sr.Gender,
			BirthPlace:       sr.BirthPlace,
			RegistrationCode: sr.RegistrationCode,
			Program:          student.Program{Label: sr.Program},
		}
		if sr.BirthDate != "" {
			bd, _ := time.Parse("2006-01-02", sr.BirthDate)
			std.BirthDate = bd
		}
		if _, err := svc.repo.UpsertStudent(ctx, std); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func (svc *Service) ImportCourseUnits(ctx context.Context, rows []Row) (ImportSummary, error) {
	var summary ImportSummary
	if err := checkColumns(rows, courseColumns); err != nil {
		return summary, err
	}

	for i, row := range rows {
		weight, err := strconv.Atoi(core.CleanString(row[ColWeight]))
		if err != nil {
			summary.reject(rowReason(i, errors.Errorf("weight %q is not an integer", row[ColWeight])))
			continue
		}
		cr := CourseUnitRow{
			Code:   strings.ToUpper(core.CleanString(row[ColCourseCode])),
			Label:  core.CleanString(row[ColCourseLabel]),
			Weight: weight,
		}
		if err := svc.validate.Struct(cr); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}
		cu := student.CourseUnit{Code: cr.Code, Label: cr.Label, Weight: cr.Weight}
		if _, err := svc.repo.UpsertCourseUnit(ctx, cu); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func (svc *Service) ImportGrades(ctx context.Context, rows []Row) (ImportSummary, error) {
	var summary ImportSummary
	if err := checkColumns(rows, gradeColumns); err != nil {
		return summary, err
	}

	scoreMax := decimal.NewFromInt(int64(svc.conf.Grading.ScoreMax))

	for i, row := range rows {
		gr := GradeImportRow{
			RegistrationCode: core.CleanString(row[ColRegistrationCode], true /* lower */),
			CourseCode:       strings.ToUpper(core.CleanString(row[ColGradeCourse])),
			Term:             core.CleanString(row[ColTerm]),
			Score:            core.CleanString(row[ColScore]),
		}
		if err := svc.validate.Struct(gr); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}

		score, err := decimal.NewFromString(gr.Score)
		if err != nil {
			summary.reject(rowReason(i, errors.Errorf("score %q is not a number", gr.Score)))
			continue
		}
		if score.IsNegative() || score.GreaterThan(scoreMax) {
			summary.reject(rowReason(i, errors.Errorf("score %s out of range [0, %s]", score, scoreMax)))
			continue
		}

		std, err := svc.repo.GetStudentByRegistrationCode(ctx, gr.RegistrationCode)
		if err != nil {
			summary.reject(rowReason(i, errors.Wrapf(err, "registration code %q", gr.RegistrationCode)))
			continue
		}
		if _, err := svc.repo.GetCourseUnitByCode(ctx, gr.CourseCode); err != nil {
			summary.reject(rowReason(i, errors.Wrapf(err, "course unit %q", gr.CourseCode)))
			continue
		}

		rec := student.GradeRecord{
			StudentID:  std.ID,
			CourseCode: gr.CourseCode,
			Term:       gr.Term,
			Score:      score,
		}
		// same (student, course, term) key overwrites, never duplicates
		if _, err := svc.repo.UpsertGrade(ctx, rec); err != nil {
			summary.reject(rowReason(i, err))
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func rowReason(i int, err error) string {
	return fmt.Sprintf("row %d: %v", i+1, err)
}
