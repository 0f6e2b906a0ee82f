package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"raven-alert/backend/config"
)

// ResendMailer 基于 Resend API 的 Mailer 实现
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer 创建 Resend 邮件客户端
func NewResendMailer(cfg *config.AlertConfig) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
	}
}

// Send 通过 Resend 发送邮件
func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Resend 发送失败: %w", err)
	}

	return sent.Id, nil
}
