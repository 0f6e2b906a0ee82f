package mailer

import "context"

// Mailer 邮件发送端口
// 广播引擎只依赖这一个契约；实现可以是 Resend，也可以是测试替身
type Mailer interface {
	// Send 发送一封邮件，成功时返回服务商侧的消息 ID
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}
