package queue

import (
	"errors"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// SMTPTransport 通过 go-mail 投递邮件，把 SMTP 错误分类为临时失败和永久失败
type SMTPTransport struct {
	client *mail.Client
	from   string
}

func NewSMTPTransport(cfg *config.Config) (*SMTPTransport, error) {
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		return nil, err
	}

	return &SMTPTransport{
		client: client,
		from:   cfg.Email.SMTP.Username,
	}, nil
}

func (t *SMTPTransport) Send(to string, subject string, body string) error {
	msg := mail.NewMsg()
	// 地址本身不合法属于永久失败，重试不可能成功
	if err := msg.From(t.from); err != nil {
		return &domain.PermanentDeliveryError{Err: err}
	}
	if err := msg.To(to); err != nil {
		return &domain.PermanentDeliveryError{Err: err}
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := t.client.DialAndSend(msg); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && !sendErr.IsTemp() {
			return &domain.PermanentDeliveryError{Err: err}
		}
		return &domain.TransientDeliveryError{Err: err}
	}

	return nil
}

func (t *SMTPTransport) Close() error {
	return t.client.Close()
}
