package report

import (
	"bytes"
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core"
)

// Dispatch composes a multi-part notification with one attachment part
// per artifact and sends it through the mail service. Transport failures
// are recorded in the returned outcome, never raised: one recipient's
// failure must not abort a batch of many. Transient failures are retried
// up to Conf.Dispatch.MaxAttempts within Conf.Dispatch.SendTimeout;
// permanent ones are not retried.
func (svc *Service) Dispatch(ctx context.Context, recipient, subject, body string, artifacts []Artifact) (DispatchOutcome, error) {
	if subject == "" || body == "" {
		return DispatchOutcome{}, errors.Wrapf(ErrEmptyMessage, "recipient %s", recipient)
	}

	msg := &core.EmailMessage{
		To:          []mail.Address{{Address: recipient}},
		Subject:     subject,
		TextContent: body,
	}
	names := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		// each part declares its own filename, never silently renamed
		msg.Attachments = append(msg.Attachments, core.Attachment{
			Content:     bytes.NewBuffer(a.Content.Bytes()),
			ContentType: a.ContentType,
			Filename:    a.Filename,
		})
		names = append(names, a.Filename)
	}

	out := DispatchOutcome{Recipient: recipient}

	sendCtx, cancel := context.WithTimeout(ctx, svc.conf.Dispatch.SendTimeout)
	defer cancel()

	maxAttempts := svc.conf.Dispatch.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var sendErr error
	var timedOut bool
	for out.Attempts < maxAttempts {
		out.Attempts++
		sendErr = svc.mailSvc.Send(sendCtx, msg)
		if sendErr == nil {
			out.Status = StatusSent
			out.Attachments = names
			return out, nil
		}
		if !core.IsTransient(sendErr) {
			break
		}
		if out.Attempts == maxAttempts {
			break
		}
		select {
		case <-sendCtx.Done():
			// Attempts keeps the count of sends actually made
			sendErr = core.NewTransportError(errors.Wrap(sendCtx.Err(), "send timed out"), true)
			timedOut = true
		case <-time.After(svc.conf.Dispatch.RetryBackoff * time.Duration(out.Attempts)):
		}
		if timedOut {
			break
		}
	}

	out.Status = StatusFailed
	out.Reason = sendErr.Error()
	out.Transient = core.IsTransient(sendErr)
	svc.logger.Warn("dispatch failed", map[string]interface{}{
		"recipient": recipient,
		"attempts":  out.Attempts,
		"transient": out.Transient,
	}, sendErr)
	return out, nil
}
