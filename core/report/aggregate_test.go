package report

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/student"
)

func gradeRow(code, score string) GradeRow {
	return GradeRow{CourseCode: code, Score: decimal.RequireFromString(score)}
}

func TestService_Aggregate(t *testing.T) {
	svc, repo, _, _ := setup(t)
	seedCourses(t, repo)
	ctx := context.Background()

	tests := []struct {
		name        string
		rows        []GradeRow
		wantTotal   string
		wantWeights int
		wantAvg     string
		wantErr     error
	}{
		{
			name:        "weighted average over two courses",
			rows:        []GradeRow{gradeRow("ECON301", "15.00"), gradeRow("MATH101", "10.00")},
			wantTotal:   "65.00",
			wantWeights: 5,
			wantAvg:     "13.00",
		},
		{
			name:        "row order does not matter",
			rows:        []GradeRow{gradeRow("MATH101", "10.00"), gradeRow("ECON301", "15.00")},
			wantTotal:   "65.00",
			wantWeights: 5,
			wantAvg:     "13.00",
		},
		{
			name: "half rounds away from zero",
			// (12.34*2 + 12.35*2) / 4 = 12.345 -> 12.35, not banker's 12.34
			rows:        []GradeRow{gradeRow("MATH101", "12.34"), gradeRow("PHYS201", "12.35")},
			wantTotal:   "49.38",
			wantWeights: 4,
			wantAvg:     "12.35",
		},
		{
			name:    "no grades",
			rows:    nil,
			wantErr: ErrNoGrades,
		},
		{
			name:    "unknown course unit first",
			rows:    []GradeRow{gradeRow("HIST999", "10.00"), gradeRow("MATH101", "10.00")},
			wantErr: ErrUnknownCourseUnit,
		},
		{
			name:    "unknown course unit last",
			rows:    []GradeRow{gradeRow("MATH101", "10.00"), gradeRow("HIST999", "10.00")},
			wantErr: ErrUnknownCourseUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Aggregate(ctx, 1, tt.rows)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, res.StudentID)
			assert.Len(t, res.Lines, len(tt.rows))
			assert.Equal(t, tt.wantTotal, res.Total.StringFixed(2))
			assert.Equal(t, tt.wantWeights, res.WeightSum)
			assert.Equal(t, tt.wantAvg, res.Average.StringFixed(2))
		})
	}
}

// failingCourseRepo simulates a store outage on course unit lookups.
type failingCourseRepo struct {
	student.Repository
	err error
}

func (r *failingCourseRepo) GetCourseUnitByCode(context.Context, string) (student.CourseUnit, error) {
	return student.CourseUnit{}, r.err
}

func TestService_Aggregate_storeFailure(t *testing.T) {
	_, repo, transport, renderer := setup(t)
	dbErr := errors.New("connection reset by peer")
	svc := NewService(&failingCourseRepo{Repository: repo, err: dbErr}, renderer, transport, core.NopLogger{}, testConfig())

	_, err := svc.Aggregate(context.Background(), 1, []GradeRow{gradeRow("ECON301", "15.00")})
	require.Error(t, err)

	// a store outage must not read as bad course data
	assert.NotEqual(t, ErrUnknownCourseUnit, errors.Cause(err))
	assert.Equal(t, dbErr, errors.Cause(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Contains(t, err.Error(), "ECON301")
}

func TestService_Aggregate_namesOffendingCode(t *testing.T) {
	svc, repo, _, _ := setup(t)
	seedCourses(t, repo)

	_, err := svc.Aggregate(context.Background(), 1, []GradeRow{gradeRow("HIST999", "10.00")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIST999")
}

func TestService_Aggregate_contributions(t *testing.T) {
	svc, repo, _, _ := setup(t)
	seedCourses(t, repo)

	res, err := svc.Aggregate(context.Background(), 1, []GradeRow{
		gradeRow("ECON301", "15.00"),
		gradeRow("MATH101", "10.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "ECON301", res.Lines[0].Code)
	assert.Equal(t, "Econometrics", res.Lines[0].Label)
	assert.Equal(t, "45.00", res.Lines[0].Contribution.StringFixed(2))
	assert.Equal(t, "20.00", res.Lines[1].Contribution.StringFixed(2))
}
