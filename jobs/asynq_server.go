package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server processing the email queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Sender    EmailSender
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Sender == nil {
		return nil, errors.New("jobs: email sender required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendEmail, NewSendEmailHandler(cfg.Sender))

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits email jobs to the queue. It satisfies auth.Dispatcher.
type Client struct {
	client  *asynq.Client
	baseURL string
}

// NewClient constructs an Asynq client. baseURL is the public address used
// to build confirmation and reset links.
func NewClient(redisOpts asynq.RedisClientOpt, baseURL string) *Client {
	return &Client{client: asynq.NewClient(redisOpts), baseURL: baseURL}
}

// EnqueueConfirmationEmail queues the email-confirmation message.
func (c *Client) EnqueueConfirmationEmail(ctx context.Context, to, name, token string) error {
	return c.enqueue(ctx, SendEmailPayload{
		To:       to,
		Subject:  "Confirm your email",
		Template: TemplateConfirmEmail,
		Variables: map[string]string{
			"username":     name,
			"host":         c.baseURL,
			"token":        token,
			"confirm_link": fmt.Sprintf("%s/auth/confirmed_email/%s", c.baseURL, token),
		},
	})
}

// EnqueueResetEmail queues the password-reset message.
func (c *Client) EnqueueResetEmail(ctx context.Context, to, name, token string) error {
	return c.enqueue(ctx, SendEmailPayload{
		To:       to,
		Subject:  "Reset Your Password",
		Template: TemplateResetPassword,
		Variables: map[string]string{
			"username":   name,
			"host":       c.baseURL,
			"token":      token,
			"reset_link": fmt.Sprintf("%s/auth/reset_password/%s", c.baseURL, token),
		},
	})
}

func (c *Client) enqueue(ctx context.Context, payload SendEmailPayload) error {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
