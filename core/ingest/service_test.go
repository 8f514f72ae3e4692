package ingest

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/student"
	inmemdb "github.com/konatebeh20/EduTrack/storage/database/inmem"
)

func setup(t *testing.T) (*Service, student.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewStudentRepository(db)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)

	conf := &core.Config{}
	conf.Grading.ScoreMax = 20
	return NewService(repo, validate, conf, core.NopLogger{}), repo
}

func studentRow(code, email string) Row {
	return Row{
		ColSurname:          "Doe",
		ColGivenName:        "Jane",
		ColEmail:            email,
		ColGender:           "F",
		ColBirthDate:        "2004-07-01",
		ColBirthPlace:       "Tashkent",
		ColRegistrationCode: code,
		ColProgram:          "Economics",
	}
}

func TestService_ImportStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("valid rows", func(t *testing.T) {
		svc, repo := setup(t)

		summary, err := svc.ImportStudents(ctx, []Row{studentRow("uz20250001", "JANE@Example.EDU ")})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Imported)
		assert.Zero(t, summary.Rejected)

		std, err := repo.GetStudentByRegistrationCode(ctx, "uz20250001")
		require.NoError(t, err)
		// addresses and codes are normalized on the way in
		assert.Equal(t, "jane@example.edu", std.Email)
		assert.Equal(t, "Economics", std.Program.Label)
		assert.Equal(t, "2004-07-01", std.BirthDate.Format("2006-01-02"))
	})

	t.Run("missing column", func(t *testing.T) {
		svc, _ := setup(t)
		row := studentRow("uz20250001", "jane@example.edu")
		delete(row, ColEmail)

		_, err := svc.ImportStudents(ctx, []Row{row})
		assert.Equal(t, ErrMissingColumn, errors.Cause(err))
		assert.Contains(t, err.Error(), `"email"`)
	})

	t.Run("no rows", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.ImportStudents(ctx, nil)
		assert.Equal(t, ErrNoRows, errors.Cause(err))
	})

	t.Run("bad address is rejected, good rows still land", func(t *testing.T) {
		svc, _ := setup(t)

		summary, err := svc.ImportStudents(ctx, []Row{
			studentRow("uz20250001", "jane@example.edu"),
			studentRow("uz20250002", "not-an-address"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Imported)
		assert.Equal(t, 1, summary.Rejected)
		require.Len(t, summary.Reasons, 1)
		assert.Contains(t, summary.Reasons[0], "row 2")
	})

	t.Run("reimport updates in place", func(t *testing.T) {
		svc, repo := setup(t)

		_, err := svc.ImportStudents(ctx, []Row{studentRow("uz20250001", "old@example.edu")})
		require.NoError(t, err)
		summary, err := svc.ImportStudents(ctx, []Row{studentRow("uz20250001", "new@example.edu")})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Imported)

		std, err := repo.GetStudentByRegistrationCode(ctx, "uz20250001")
		require.NoError(t, err)
		assert.Equal(t, "new@example.edu", std.Email)

		all, err := repo.FilterStudents(ctx, student.CohortFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestService_ImportCourseUnits(t *testing.T) {
	ctx := context.Background()

	courseRow := func(code, label, weight string) Row {
		return Row{ColCourseCode: code, ColCourseLabel: label, ColWeight: weight}
	}

	t.Run("valid rows", func(t *testing.T) {
		svc, repo := setup(t)

		summary, err := svc.ImportCourseUnits(ctx, []Row{
			courseRow("econ301", "Econometrics", "3"),
			courseRow("MATH101", "Calculus", "2"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Imported)

		cu, err := repo.GetCourseUnitByCode(ctx, "ECON301")
		require.NoError(t, err)
		assert.Equal(t, 3, cu.Weight)
	})

	t.Run("rejects bad weights and codes", func(t *testing.T) {
		svc, _ := setup(t)

		summary, err := svc.ImportCourseUnits(ctx, []Row{
			courseRow("ECON301", "Econometrics", "0"),
			courseRow("ECON301", "Econometrics", "-1"),
			courseRow("ECON301", "Econometrics", "three"),
			courseRow("econ", "No digits", "2"),
		})
		require.NoError(t, err)
		assert.Zero(t, summary.Imported)
		assert.Equal(t, 4, summary.Rejected)
		assert.Contains(t, summary.Reasons[2], "not an integer")
	})
}

func TestService_ImportGrades(t *testing.T) {
	ctx := context.Background()

	gradeRow := func(code, course, term, score string) Row {
		return Row{
			ColRegistrationCode: code,
			ColGradeCourse:      course,
			ColTerm:             term,
			ColScore:            score,
		}
	}

	seed := func(t *testing.T, svc *Service) {
		t.Helper()
		if _, err := svc.ImportStudents(ctx, []Row{studentRow("uz20250001", "jane@example.edu")}); err != nil {
			t.Fatalf("seed students failed: %v", err)
		}
		if _, err := svc.ImportCourseUnits(ctx, []Row{
			{ColCourseCode: "ECON301", ColCourseLabel: "Econometrics", ColWeight: "3"},
		}); err != nil {
			t.Fatalf("seed courses failed: %v", err)
		}
	}

	t.Run("valid row", func(t *testing.T) {
		svc, repo := setup(t)
		seed(t, svc)

		summary, err := svc.ImportGrades(ctx, []Row{gradeRow("UZ20250001", "econ301", "2025-S1", "15.5")})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Imported)

		std, err := repo.GetStudentByRegistrationCode(ctx, "uz20250001")
		require.NoError(t, err)
		recs, err := repo.QueryStudentGrades(ctx, std.ID, "2025-S1")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "ECON301", recs[0].CourseCode)
		assert.Equal(t, "15.5", recs[0].Score.String())
	})

	t.Run("score bounds", func(t *testing.T) {
		svc, _ := setup(t)
		seed(t, svc)

		summary, err := svc.ImportGrades(ctx, []Row{
			gradeRow("uz20250001", "ECON301", "2025-S1", "-1"),
			gradeRow("uz20250001", "ECON301", "2025-S1", "20.01"),
			gradeRow("uz20250001", "ECON301", "2025-S1", "20"),
			gradeRow("uz20250001", "ECON301", "2025-S1", "0"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Imported) // both bounds are inclusive
		assert.Equal(t, 2, summary.Rejected)
		assert.Contains(t, summary.Reasons[0], "out of range")
	})

	t.Run("unknown references are rejected", func(t *testing.T) {
		svc, _ := setup(t)
		seed(t, svc)

		summary, err := svc.ImportGrades(ctx, []Row{
			gradeRow("uz99999999", "ECON301", "2025-S1", "10"),
			gradeRow("uz20250001", "HIST999", "2025-S1", "10"),
		})
		require.NoError(t, err)
		assert.Zero(t, summary.Imported)
		assert.Equal(t, 2, summary.Rejected)
		assert.Contains(t, summary.Reasons[0], `registration code "uz99999999"`)
		assert.Contains(t, summary.Reasons[1], `course unit "HIST999"`)
	})

	t.Run("reimport overwrites the same key", func(t *testing.T) {
		svc, repo := setup(t)
		seed(t, svc)

		_, err := svc.ImportGrades(ctx, []Row{gradeRow("uz20250001", "ECON301", "2025-S1", "10")})
		require.NoError(t, err)
		_, err = svc.ImportGrades(ctx, []Row{gradeRow("uz20250001", "ECON301", "2025-S1", "12")})
		require.NoError(t, err)

		std, err := repo.GetStudentByRegistrationCode(ctx, "uz20250001")
		require.NoError(t, err)
		recs, err := repo.QueryStudentGrades(ctx, std.ID, "2025-S1")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "12", recs[0].Score.String())
	})
}
