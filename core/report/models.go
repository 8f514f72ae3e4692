package report

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind selects the artifact flavour produced for a student.
type Kind string

const (
	KindTabular   Kind = "tabular"   // spreadsheet export
	KindPrintable Kind = "printable" // printable document
)

func (k Kind) Valid() bool {
	return k == KindTabular || k == KindPrintable
}

// Ext returns the filename extension for the kind.
func (k Kind) Ext() string {
	if k == KindTabular {
		return "xlsx"
	}
	return "pdf"
}

func (k Kind) ContentType() string {
	if k == KindTabular {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// GradeRow is one (course code, score) pair fed to the Aggregator.
type GradeRow struct {
	CourseCode string
	Score      decimal.Decimal
}

// CourseLine holds one course's contribution to a student's weighted total.
type CourseLine struct {
	Code         string
	Label        string
	Score        decimal.Decimal
	Weight       int
	Contribution decimal.Decimal // Score * Weight
}

// AggregationResult is owned by the Aggregate call that produced it;
// it is never persisted. Invariant: WeightSum > 0.
type AggregationResult struct {
	StudentID int
	Lines     []CourseLine
	Total     decimal.Decimal
	WeightSum int
	Average   decimal.Decimal // Total / WeightSum, 2 decimal places
}

// Document is the renderer-agnostic content of an artifact. The field
// order is a stable contract: header fields, then one row per course,
// then the summary fields.
type (
	DocField struct {
		Label string
		Value string
	}

	Document struct {
		Title   string
		Header  []DocField
		Columns []string
		Rows    [][]string
		Summary []DocField
	}
)

// Artifact is a generated document payload for one student and one run.
// It only lives for the duration of the run; persistence of output files
// is a collaborator concern.
type Artifact struct {
	ID          uuid.UUID
	StudentID   int
	Kind        Kind
	Filename    string
	ContentType string
	Content     *bytes.Buffer
}

type DispatchStatus string

const (
	StatusSent   DispatchStatus = "sent"
	StatusFailed DispatchStatus = "failed"
)

// DispatchOutcome records the terminal result of one (recipient, run) dispatch.
type DispatchOutcome struct {
	Recipient   string
	Status      DispatchStatus
	Reason      string
	Transient   bool
	Attempts    int
	Attachments []string // filenames actually sent
}

// Stage names the pipeline step a per-student failure occurred in.
type Stage string

const (
	StageAggregating Stage = "aggregating"
	StageGenerating  Stage = "generating"
	StageDispatching Stage = "dispatching"
)

// RunState tracks a batch run through its coarse lifecycle. Per-step
// progress is deliberately not modeled here: a run moves through its
// students synchronously, and the step a given student was in only
// matters when it fails, which StudentFailure.Stage records.
type RunState string

const (
	StatePending    RunState = "pending"
	StateRunning    RunState = "running"
	StateCompleted  RunState = "completed"
)

type StudentFailure struct {
	StudentID int    `json:"student_id"`
	Stage     Stage  `json:"stage"`
	Reason    string `json:"reason"`
}

// RunSummary is the only state that outlives a batch run.
type RunSummary struct {
	RunID         uuid.UUID        `json:"run_id"`
	State         RunState         `json:"state"`
	StartedAt     time.Time        `json:"started_at"`  // UTC
	FinishedAt    time.Time        `json:"finished_at"` // UTC
	Sent          int              `json:"sent"`
	Failed        int              `json:"failed"`
	Skipped       int              `json:"skipped"`
	Failures      []StudentFailure `json:"failures"` // first maxRunFailures only
	AdminNotified bool             `json:"admin_notified"`
}
