package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestHandleSendDocumentSkipsRetryOnBadPayload(t *testing.T) {
	mailer := &DocumentMailer{Host: "127.0.0.1", Port: 1025, From: "no-reply@foundry.local", To: "procurement@foundry.local"}

	task := asynq.NewTask(TaskTypeSendDocument, []byte("{not json"))
	err := mailer.HandleSendDocument(context.Background(), task)

	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleSendDocumentDropsTaskWithoutRecipient(t *testing.T) {
	// No Recipient in the payload and no fallback address configured. The
	// handler must return nil without touching the network so Asynq does
	// not retry an undeliverable task.
	mailer := &DocumentMailer{Host: "203.0.113.1", Port: 1025, From: "no-reply@foundry.local"}

	task, err := NewSendDocumentTask(SendDocumentPayload{DocType: "quotation", Number: "QT-1756500000000"})
	require.NoError(t, err)

	require.NoError(t, mailer.HandleSendDocument(context.Background(), task))
}

func TestDocumentMessageCarriesHeadersAndNumber(t *testing.T) {
	mailer := &DocumentMailer{From: "no-reply@foundry.local"}

	msg := string(mailer.message("vendor@acme.test", SendDocumentPayload{
		DocType: "purchase_order",
		Number:  "PO-2026-0007",
	}))

	require.Contains(t, msg, "From: no-reply@foundry.local\r\n")
	require.Contains(t, msg, "To: vendor@acme.test\r\n")
	require.Contains(t, msg, "Subject: purchase_order PO-2026-0007 has been sent\r\n")
	require.Contains(t, msg, "PO-2026-0007")
}
