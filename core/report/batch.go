package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/student"
)

// maxRunFailures caps the failure reasons carried by a RunSummary.
const maxRunFailures = 20

// RunOptions selects the cohort and term a batch run covers.
type RunOptions struct {
	Filter student.CohortFilter
	Term   string // empty = all terms
}

// Run drives the pipeline over every student in the cohort, in cohort
// listing order: aggregate, generate every configured artifact kind,
// dispatch to the student's own address. Per-student failures are
// recorded into the summary and never abort the run; only configuration
// errors do. Concurrent runs over overlapping cohorts are not supported
// and must be serialized by the caller.
func (svc *Service) Run(ctx context.Context, opts RunOptions) (RunSummary, error) {
	summary := RunSummary{
		RunID:     uuid.New(),
		State:     StatePending,
		StartedAt: time.Now().UTC(),
	}

	if svc.conf.AdminEmail == "" {
		return summary, errors.Wrap(ErrConfiguration, "administrator address not set")
	}
	kinds, err := configuredKinds(svc.conf.Grading.Kinds)
	if err != nil {
		return summary, err
	}

	cohort, err := svc.repo.FilterStudents(ctx, opts.Filter)
	if err != nil {
		return summary, errors.Wrap(err, "listing cohort")
	}
	if len(cohort) == 0 {
		return summary, errors.Wrap(ErrConfiguration, "empty cohort")
	}

	summary.State = StateRunning
	svc.logger.Info(fmt.Sprintf("run %s: processing %d students", summary.RunID, len(cohort)))

	for i, std := range cohort {
		// stop before the next student's aggregation; already-recorded
		// outcomes are kept
		if ctx.Err() != nil {
			summary.Skipped += len(cohort) - i
			break
		}
		svc.processStudent(ctx, std, opts.Term, kinds, &summary)
	}

	if summary.Sent > 0 {
		svc.notifyAdmin(ctx, &summary)
	}

	summary.State = StateCompleted
	summary.FinishedAt = time.Now().UTC()
	svc.logger.Info(fmt.Sprintf("run %s: %d sent, %d failed, %d skipped",
		summary.RunID, summary.Sent, summary.Failed, summary.Skipped))
	return summary, nil
}

// RunStudent runs the pipeline for a single selected student. No
// administrative rollup is sent for single-student runs.
func (svc *Service) RunStudent(ctx context.Context, studentID int, term string) (RunSummary, error) {
	summary := RunSummary{
		RunID:     uuid.New(),
		State:     StateRunning,
		StartedAt: time.Now().UTC(),
	}
	kinds, err := configuredKinds(svc.conf.Grading.Kinds)
	if err != nil {
		return summary, err
	}

	std, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return summary, err
	}
	svc.processStudent(ctx, std, term, kinds, &summary)

	summary.State = StateCompleted
	summary.FinishedAt = time.Now().UTC()
	return summary, nil
}

// processStudent moves one student through aggregate -> generate ->
// dispatch, recording the outcome on the summary. Failures are caught
// at this boundary so one student never blocks another.
func (svc *Service) processStudent(ctx context.Context, std student.Student, term string, kinds []Kind, summary *RunSummary) {
	if std.Email == "" {
		svc.logger.Warn(fmt.Sprintf("student %d has no address, skipping", std.ID))
		summary.Skipped++
		return
	}

	grades, err := svc.repo.QueryStudentGrades(ctx, std.ID, term)
	if err != nil {
		summary.recordFailure(std.ID, StageAggregating, err)
		return
	}
	rows := make([]GradeRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, GradeRow{CourseCode: g.CourseCode, Score: g.Score})
	}

	res, err := svc.Aggregate(ctx, std.ID, rows)
	if err != nil {
		summary.recordFailure(std.ID, StageAggregating, err)
		return
	}

	artifacts := make([]Artifact, 0, len(kinds))
	for _, kind := range kinds {
		artifact, err := svc.Generate(ctx, std, res, kind)
		if err != nil {
			summary.recordFailure(std.ID, StageGenerating, err)
			return
		}
		artifacts = append(artifacts, artifact)
	}

	subject := "Your report card"
	body := fmt.Sprintf(
		"Dear %s,\n\nPlease find attached your report card (average: %s).\n",
		std.FullName(), res.Average.StringFixed(averagePrecision),
	)
	outcome, err := svc.Dispatch(ctx, std.Email, subject, body, artifacts)
	if err != nil {
		summary.recordFailure(std.ID, StageDispatching, err)
		return
	}
	if outcome.Status != StatusSent {
		summary.recordFailure(std.ID, StageDispatching, errors.New(outcome.Reason))
		return
	}
	summary.Sent++
}

// notifyAdmin sends the summary-only administrative rollup. Student
// artifacts are deliberately not attached: that does not scale with
// cohort size.
func (svc *Service) notifyAdmin(ctx context.Context, summary *RunSummary) {
	body := fmt.Sprintf(
		"Report card run %s finished: %d sent, %d failed, %d skipped.\n",
		summary.RunID, summary.Sent, summary.Failed, summary.Skipped,
	)
	for _, f := range summary.Failures {
		body += fmt.Sprintf("- student %d failed while %s: %s\n", f.StudentID, f.Stage, f.Reason)
	}
	outcome, err := svc.Dispatch(ctx, svc.conf.AdminEmail, "Report card run summary", body, nil)
	if err != nil {
		svc.logger.Error("admin rollup not sent", err)
		return
	}
	summary.AdminNotified = outcome.Status == StatusSent
}

func (summary *RunSummary) recordFailure(studentID int, stage Stage, err error) {
	summary.Failed++
	if len(summary.Failures) < maxRunFailures {
		summary.Failures = append(summary.Failures, StudentFailure{
			StudentID: studentID,
			Stage:     stage,
			Reason:    err.Error(),
		})
	}
}

func configuredKinds(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return nil, errors.Wrap(ErrConfiguration, "no report kinds configured")
	}
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		kind := Kind(name)
		if !kind.Valid() {
			return nil, errors.Wrapf(ErrConfiguration, "unknown report kind %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
