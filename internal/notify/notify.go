// Package notify dispatches document notifications onto the job queue.
// Dispatch is fire and forget: a queue outage is logged and swallowed so
// a failed notification can never roll back the document write that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/foundry-erp/foundry-erp/jobs"
)

// Dispatcher pushes document notifications to the background worker.
type Dispatcher struct {
	client *jobs.Client
	logger *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(client *jobs.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

// DocumentSent enqueues a notification for a document that entered a
// SENT status.
func (d *Dispatcher) DocumentSent(ctx context.Context, docType, number string) {
	if d == nil || d.client == nil {
		return
	}
	_, err := d.client.EnqueueSendDocument(ctx, jobs.SendDocumentPayload{DocType: docType, Number: number})
	if err != nil && d.logger != nil {
		d.logger.Warn("document notification enqueue failed",
			slog.String("doc_type", docType),
			slog.String("number", number),
			slog.Any("error", err))
	}
}
