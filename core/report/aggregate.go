package report

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/konatebeh20/EduTrack/core/student"
)

// averagePrecision is shared by every artifact kind so that spreadsheet
// and printable outputs never show diverging values.
const averagePrecision = 2

// Aggregate converts a student's graded rows into a weighted total and
// average. It is all-or-nothing: an unresolvable course code aborts the
// whole aggregation and no partial result is returned.
func (svc *Service) Aggregate(ctx context.Context, studentID int, rows []GradeRow) (AggregationResult, error) {
	if len(rows) == 0 {
		// never report an ungraded student as an average of zero
		return AggregationResult{}, errors.Wrapf(ErrNoGrades, "student %d", studentID)
	}

	res := AggregationResult{
		StudentID: studentID,
		Lines:     make([]CourseLine, 0, len(rows)),
	}
	for _, row := range rows {
		cu, err := svc.repo.GetCourseUnitByCode(ctx, row.CourseCode)
		if err != nil {
			if errors.Cause(err) == student.ErrCourseUnitNotFound {
				return AggregationResult{}, errors.Wrapf(ErrUnknownCourseUnit, "course unit %q", row.CourseCode)
			}
			// store failure, not a data problem; keep the real cause
			return AggregationResult{}, errors.Wrapf(err, "resolving course unit %q", row.CourseCode)
		}
		weight := decimal.NewFromInt(int64(cu.Weight))
		contribution := row.Score.Mul(weight)
		res.Lines = append(res.Lines, CourseLine{
			Code:         cu.Code,
			Label:        cu.Label,
			Score:        row.Score,
			Weight:       cu.Weight,
			Contribution: contribution,
		})
		res.Total = res.Total.Add(contribution)
		res.WeightSum += cu.Weight
	}

	if res.WeightSum <= 0 {
		// cannot happen with stored course units (weight > 0 is enforced at
		// ingestion) but an average must never be computed over zero weights
		return AggregationResult{}, errors.Errorf("student %d: course weights sum to zero", studentID)
	}

	// Round rounds half away from zero
	res.Average = res.Total.Div(decimal.NewFromInt(int64(res.WeightSum))).Round(averagePrecision)
	return res, nil
}
