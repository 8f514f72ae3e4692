package report

import (
	"context"
	"errors"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/student"
)

var (
	// errors
	ErrUnknownCourseUnit = errors.New("unknown course unit")
	ErrNoGrades          = errors.New("student has no recorded grades")
	ErrArtifactWrite     = errors.New("artifact could not be written")
	ErrEmptyMessage      = errors.New("message subject and body must not be empty")
	ErrConfiguration     = errors.New("run configuration invalid")
)

type (
	// Renderer encodes a Document into the bytes of the given artifact kind.
	Renderer interface {
		Render(ctx context.Context, kind Kind, doc Document) ([]byte, error)
	}

	// Service drives the report-card pipeline: aggregate a student's
	// grades, generate artifacts, dispatch them, and coordinate batch runs.
	Service struct {
		repo     student.Repository
		renderer Renderer
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
	}
)

func NewService(repo student.Repository, renderer Renderer, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
	}
}
