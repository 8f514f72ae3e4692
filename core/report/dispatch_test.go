package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konatebeh20/EduTrack/core"
)

func testArtifact(filename string) Artifact {
	return Artifact{
		StudentID:   1,
		Kind:        KindTabular,
		Filename:    filename,
		ContentType: KindTabular.ContentType(),
		Content:     bytes.NewBufferString("payload"),
	}
}

func TestService_Dispatch(t *testing.T) {
	ctx := context.Background()

	transientErr := func() error { return core.NewTransportError(errors.New("connection refused"), true) }
	permanentErr := func() error { return core.NewTransportError(errors.New("mail server rejected address"), false) }

	t.Run("success with attachments", func(t *testing.T) {
		svc, _, transport, _ := setup(t)
		out, err := svc.Dispatch(ctx, "jane@example.edu", "Your report card", "see attached",
			[]Artifact{testArtifact("doe_jane_bulletin.xlsx"), testArtifact("doe_jane_bulletin.pdf")})
		require.NoError(t, err)

		assert.Equal(t, StatusSent, out.Status)
		assert.Equal(t, 1, out.Attempts)
		assert.Equal(t, []string{"doe_jane_bulletin.xlsx", "doe_jane_bulletin.pdf"}, out.Attachments)

		require.Len(t, transport.sent, 1)
		msg := transport.sent[0]
		assert.Equal(t, "jane@example.edu", msg.To[0].Address)
		require.Len(t, msg.Attachments, 2)
		// attachments keep their own filenames
		assert.Equal(t, "doe_jane_bulletin.xlsx", msg.Attachments[0].Filename)
		assert.Equal(t, "doe_jane_bulletin.pdf", msg.Attachments[1].Filename)
	})

	t.Run("permanent failure is not retried", func(t *testing.T) {
		svc, _, transport, _ := setup(t)
		transport.errs = []error{permanentErr(), permanentErr(), permanentErr()}

		out, err := svc.Dispatch(ctx, "bad@example.edu", "s", "b", nil)
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, out.Status)
		assert.Equal(t, 1, out.Attempts)
		assert.Equal(t, 1, transport.calls)
		assert.False(t, out.Transient)
		assert.Contains(t, out.Reason, "rejected address")
	})

	t.Run("transient failure succeeds after exactly 3 attempts", func(t *testing.T) {
		svc, _, transport, _ := setup(t)
		transport.errs = []error{transientErr(), transientErr()}

		out, err := svc.Dispatch(ctx, "jane@example.edu", "s", "b", nil)
		require.NoError(t, err)

		assert.Equal(t, StatusSent, out.Status)
		assert.Equal(t, 3, out.Attempts)
		assert.Equal(t, 3, transport.calls)
	})

	t.Run("transient failure gives up after max attempts", func(t *testing.T) {
		svc, _, transport, _ := setup(t)
		transport.errs = []error{transientErr(), transientErr(), transientErr(), transientErr()}

		out, err := svc.Dispatch(ctx, "jane@example.edu", "s", "b", nil)
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, out.Status)
		assert.Equal(t, 3, out.Attempts)
		assert.Equal(t, 3, transport.calls)
		assert.True(t, out.Transient)
	})

	t.Run("send deadline expires during backoff", func(t *testing.T) {
		svc, _, transport, _ := setup(t)
		svc.conf.Dispatch.SendTimeout = 10 * time.Millisecond
		svc.conf.Dispatch.RetryBackoff = time.Second
		transport.errs = []error{transientErr()}

		out, err := svc.Dispatch(ctx, "jane@example.edu", "s", "b", nil)
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, out.Status)
		// only one send actually happened
		assert.Equal(t, 1, out.Attempts)
		assert.Equal(t, 1, transport.calls)
		assert.True(t, out.Transient)
		assert.Contains(t, out.Reason, "send timed out")
	})

	t.Run("empty subject or body", func(t *testing.T) {
		svc, _, transport, _ := setup(t)

		_, err := svc.Dispatch(ctx, "jane@example.edu", "", "body", nil)
		assert.Equal(t, ErrEmptyMessage, errors.Cause(err))

		_, err = svc.Dispatch(ctx, "jane@example.edu", "subject", "", nil)
		assert.Equal(t, ErrEmptyMessage, errors.Cause(err))

		assert.Zero(t, transport.calls)
	})

	t.Run("no attachments is fine", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		out, err := svc.Dispatch(ctx, "admin@example.edu", "summary", "all done", nil)
		require.NoError(t, err)
		assert.Equal(t, StatusSent, out.Status)
		assert.Empty(t, out.Attachments)
	})
}
