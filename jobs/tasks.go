// Package jobs defines the background task types and the Asynq worker and
// client that process them.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// Template names resolved by the mailer.
const (
	TemplateConfirmEmail  = "confirm_email.html"
	TemplateResetPassword = "reset_password.html"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// EmailSender delivers a rendered template to one recipient. The mailer
// satisfies it inside the worker.
type EmailSender interface {
	Send(to, subject, template string, vars map[string]string) error
}

// NewSendEmailHandler builds the Asynq handler for TaskTypeSendEmail.
// Undecodable payloads are dropped; delivery errors are retried by Asynq.
func NewSendEmailHandler(sender EmailSender) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		return sender.Send(payload.To, payload.Subject, payload.Template, payload.Variables)
	}
}
