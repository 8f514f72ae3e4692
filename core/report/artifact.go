package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/student"
)

// Generate produces one artifact for the student from an aggregation
// result. It owns the content and structure decision; byte-level
// encoding is delegated to the renderer. Retrying on renderer failure
// is the batch coordinator's decision, not the generator's.
func (svc *Service) Generate(ctx context.Context, std student.Student, res AggregationResult, kind Kind) (Artifact, error) {
	if !kind.Valid() {
		return Artifact{}, errors.Wrapf(ErrConfiguration, "unknown artifact kind %q", kind)
	}

	doc := buildDocument(std, res)
	content, err := svc.renderer.Render(ctx, kind, doc)
	if err != nil {
		return Artifact{}, errors.Wrapf(ErrArtifactWrite, "student %d, kind %s: %v", std.ID, kind, err)
	}

	return Artifact{
		ID:          uuid.New(),
		StudentID:   std.ID,
		Kind:        kind,
		Filename:    bulletinFilename(std, kind),
		ContentType: kind.ContentType(),
		Content:     bytes.NewBuffer(content),
	}, nil
}

// buildDocument lays out the fixed ordered field set shared by every
// artifact kind: identity, registration code, one row per course with
// (label, score, weight, contribution), then total and average.
func buildDocument(std student.Student, res AggregationResult) Document {
	doc := Document{
		Title: "Report Card - " + std.FullName(),
		Header: []DocField{
			{Label: "Surname", Value: std.Surname},
			{Label: "Given name", Value: std.GivenName},
			{Label: "Registration code", Value: std.RegistrationCode},
			{Label: "Program", Value: std.Program.Label},
		},
		Columns: []string{"Course unit", "Score", "Weight", "Contribution"},
		Rows:    make([][]string, 0, len(res.Lines)),
	}
	for _, line := range res.Lines {
		doc.Rows = append(doc.Rows, []string{
			line.Label,
			line.Score.StringFixed(averagePrecision),
			strconv.Itoa(line.Weight),
			line.Contribution.StringFixed(averagePrecision),
		})
	}
	doc.Summary = []DocField{
		{Label: "Total", Value: res.Total.StringFixed(averagePrecision)},
		{Label: "Average", Value: res.Average.StringFixed(averagePrecision)},
	}
	return doc
}

func bulletinFilename(std student.Student, kind Kind) string {
	return fmt.Sprintf("%s_%s_bulletin.%s",
		sanitizeNamePart(std.Surname), sanitizeNamePart(std.GivenName), kind.Ext())
}

// sanitizeNamePart makes a name component safe for a filename: path
// separators stripped, whitespace collapsed to single underscores.
func sanitizeNamePart(s string) string {
	s = strings.NewReplacer("/", "", "\\", "", "..", "").Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}
