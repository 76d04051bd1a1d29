package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendDocument is the task type for vendor-facing document
	// notifications (quotations, purchase orders).
	TaskTypeSendDocument = "document:send"
)

// SendDocumentPayload carries the document identity a notification refers
// to. Recipient may be empty; the mailer then falls back to the
// procurement desk address it was configured with.
type SendDocumentPayload struct {
	DocType   string `json:"doc_type"`
	Number    string `json:"number"`
	Recipient string `json:"recipient,omitempty"`
}

// NewSendDocumentTask constructs an Asynq task.
func NewSendDocumentTask(payload SendDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendDocument, data), nil
}

// DocumentMailer delivers document notifications over SMTP (Mailpit in
// development).
type DocumentMailer struct {
	Host   string
	Port   int
	From   string
	To     string
	Logger *slog.Logger
}

// HandleSendDocument processes TaskTypeSendDocument tasks. Tasks with no
// usable recipient are dropped after a log line rather than retried.
func (m *DocumentMailer) HandleSendDocument(ctx context.Context, t *asynq.Task) error {
	var payload SendDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	to := payload.Recipient
	if to == "" {
		to = m.To
	}
	if to == "" {
		m.logger().Info("document notification dropped, no recipient",
			slog.String("doc_type", payload.DocType), slog.String("number", payload.Number))
		return nil
	}

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := smtp.SendMail(addr, nil, m.From, []string{to}, m.message(to, payload)); err != nil {
		return fmt.Errorf("send document %s %s: %w", payload.DocType, payload.Number, err)
	}
	m.logger().Info("document notification sent",
		slog.String("doc_type", payload.DocType), slog.String("number", payload.Number), slog.String("to", to))
	return nil
}

func (m *DocumentMailer) message(to string, payload SendDocumentPayload) []byte {
	subject := fmt.Sprintf("%s %s has been sent", payload.DocType, payload.Number)
	body := fmt.Sprintf("Document %s (%s) has been dispatched by Foundry ERP.\r\n", payload.Number, payload.DocType)
	return []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)
}

func (m *DocumentMailer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
