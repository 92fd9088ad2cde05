// Package mail は外部へのメール送信を提供する。
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecipient は宛先がメールアドレスとして解釈できないことを示す。
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Message は送信するメール1通を表す。
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender はメール送信のインターフェース。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig はSMTPリレーの接続設定を保持する。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender はSMTPリレー経由でメールを送信する。
// サーバーがSTARTTLSに対応している場合は暗号化してから認証する。
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPSender はSMTPSenderを生成する。Usernameが空の場合は認証を行わない。
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host: cfg.Host,
		from: cfg.From,
		now:  time.Now,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Send はメールを1通送信する。ctxのデッドラインは接続全体に適用される。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}
	if s.auth != nil {
		if err := c.Auth(s.auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(to.Address); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(s.buildMessage(to.Address, msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return c.Quit()
}

// buildMessage はヘッダー付きのRFC 5322メッセージを組み立てる。
// 件名の改行はヘッダーインジェクション防止のため除去する。
func (s *SMTPSender) buildMessage(to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + stripNewlines(msg.Subject) + "\r\n")
	b.WriteString("Date: " + s.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// NopSender は何も送信しないSender。SMTP未設定時に使用する。
type NopSender struct{}

// Send は何もせずnilを返す。
func (NopSender) Send(context.Context, Message) error { return nil }

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NopSender{}
)
