package report

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/student"
	inmemdb "github.com/konatebeh20/EduTrack/storage/database/inmem"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:    "EduTrack",
		Env:        "TEST",
		TestMode:   true,
		AdminEmail: "admin@example.edu",
		Dispatch: core.DispatchConfig{
			MaxAttempts:  3,
			RetryBackoff: time.Millisecond,
			SendTimeout:  time.Second,
		},
		Grading: core.GradingConfig{
			ScoreMax: 20,
			Kinds:    []string{"tabular", "printable"},
		},
	}
}

// fakeTransport scripts Send results: it pops errs in order and keeps
// succeeding once the script runs out.
type fakeTransport struct {
	mu    sync.Mutex
	errs  []error
	calls int
	sent  []core.EmailMessage
}

var _ core.EmailService = (*fakeTransport)(nil)

func (svc *fakeTransport) Send(_ context.Context, msg *core.EmailMessage) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.calls++
	if len(svc.errs) > 0 {
		err := svc.errs[0]
		svc.errs = svc.errs[1:]
		if err != nil {
			return err
		}
	}
	svc.sent = append(svc.sent, *msg)
	return nil
}

// fakeRenderer stamps the kind into the payload; fails when failing is set.
type fakeRenderer struct {
	failing bool
	docs    []Document
}

var _ Renderer = (*fakeRenderer)(nil)

func (r *fakeRenderer) Render(_ context.Context, kind Kind, doc Document) ([]byte, error) {
	if r.failing {
		return nil, fmt.Errorf("disk full")
	}
	r.docs = append(r.docs, doc)
	return []byte("rendered-" + string(kind)), nil
}

func setup(t *testing.T) (*Service, student.Repository, *fakeTransport, *fakeRenderer) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewStudentRepository(db)
	transport := &fakeTransport{}
	renderer := &fakeRenderer{}
	svc := NewService(repo, renderer, transport, core.NopLogger{}, testConfig())
	return svc, repo, transport, renderer
}

func seedCourses(t *testing.T, repo student.Repository) {
	t.Helper()
	for _, cu := range []student.CourseUnit{
		{Code: "ECON301", Label: "Econometrics", Weight: 3},
		{Code: "MATH101", Label: "Calculus", Weight: 2},
		{Code: "PHYS201", Label: "Mechanics", Weight: 2},
	} {
		if _, err := repo.UpsertCourseUnit(context.Background(), cu); err != nil {
			t.Fatalf("seedCourses() failed: %v", err)
		}
	}
}

func createStudent(t *testing.T, repo student.Repository, surname, given, email, code string) student.Student {
	t.Helper()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Surname:          surname,
		GivenName:        given,
		Email:            email,
		RegistrationCode: code,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func addGrade(t *testing.T, repo student.Repository, studentID int, courseCode, term, score string) {
	t.Helper()
	sc, err := decimal.NewFromString(score)
	if err != nil {
		t.Fatalf("addGrade() failed: %v", err)
	}
	if _, err := repo.UpsertGrade(context.Background(), student.GradeRecord{
		StudentID:  studentID,
		CourseCode: courseCode,
		Term:       term,
		Score:      sc,
	}); err != nil {
		t.Fatalf("addGrade() failed: %v", err)
	}
}
