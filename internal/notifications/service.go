package notifications

import (
	"context"
	"fmt"

	"titledoctor/internal/config"
	"titledoctor/internal/jobs"
	"titledoctor/internal/services/resend"
)

// Service defines the email surface exposed to pipeline components.
type Service interface {
	// NotifyReport sends the improved-titles report and returns the
	// provider's delivery identifier.
	NotifyReport(ctx context.Context, to, channelName string, titles []jobs.ImprovedTitle) (string, error)
	// NotifyFailure tells the submitter their job failed and why.
	NotifyFailure(ctx context.Context, to, message string) (string, error)
}

// NewService builds an email service backed by Resend when configured.
// When credentials are missing, a noop implementation is returned.
func NewService(cfg *config.Config, opts ...resend.Option) Service {
	client := resend.NewClient(resend.Config{
		APIKey:         cfg.Email.APIKey,
		FromAddress:    cfg.Email.FromAddress,
		BaseURL:        cfg.Email.BaseURL,
		TimeoutSeconds: cfg.Email.TimeoutSeconds,
	}, opts...)
	if !client.Configured() {
		return noopService{}
	}
	return &resendService{client: client}
}

type resendService struct {
	client *resend.Client
}

func (s *resendService) NotifyReport(ctx context.Context, to, channelName string, titles []jobs.ImprovedTitle) (string, error) {
	return s.client.Send(ctx, resend.Message{
		To:      to,
		Subject: fmt.Sprintf("Improved Titles for channel %s", channelName),
		HTML:    ReportHTML(channelName, titles),
	})
}

func (s *resendService) NotifyFailure(ctx context.Context, to, message string) (string, error) {
	return s.client.Send(ctx, resend.Message{
		To:      to,
		Subject: "Request failed for YouTube title refactoring",
		HTML:    FailureHTML(message),
	})
}

type noopService struct{}

func (noopService) NotifyReport(context.Context, string, string, []jobs.ImprovedTitle) (string, error) {
	return "", nil
}

func (noopService) NotifyFailure(context.Context, string, string) (string, error) {
	return "", nil
}

// NewNop returns a Service that silently discards every notification.
func NewNop() Service {
	return noopService{}
}
