// Package rendersvc encodes report documents into their downloadable
// representations. The content and field order are decided upstream by
// the artifact generator; this package only deals in bytes.
package rendersvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/report"
)

type service struct{}

var _ report.Renderer = (*service)(nil)

func NewService() report.Renderer {
	return &service{}
}

func (svc *service) Render(ctx context.Context, kind report.Kind, doc report.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch kind {
	case report.KindTabular:
		return renderExcel(doc)
	case report.KindPrintable:
		return renderPDF(doc)
	default:
		return nil, errors.Errorf("unknown artifact kind %q", kind)
	}
}
