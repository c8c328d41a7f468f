package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// EmailConfig holds the SMTP account used for outbound mail.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// EmailTransport mails the message to every recipient through shoutrrr's
// smtp service. The sender is rebuilt per send because the recipient list is
// part of the service URL and changes with the persisted settings.
type EmailTransport struct {
	cfg EmailConfig
}

func NewEmailTransport(cfg EmailConfig) *EmailTransport {
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	return &EmailTransport{cfg: cfg}
}

func (t *EmailTransport) Name() string {
	return "email"
}

func (t *EmailTransport) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sender, err := shoutrrr.CreateSender(t.serviceURL(msg.Recipients))
	if err != nil {
		return fmt.Errorf("build smtp sender: %w", err)
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	params := stypes.Params{}
	params.SetTitle(msg.Subject)

	for _, err := range sender.Send(msg.Body, &params) {
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
	}
	return nil
}

func (t *EmailTransport) serviceURL(recipients []string) string {
	q := url.Values{}
	q.Set("from", t.cfg.From)
	q.Set("to", strings.Join(recipients, ","))
	if t.cfg.UseTLS {
		q.Set("usetls", "yes")
	}
	return fmt.Sprintf("smtp://%s:%s@%s:%d/?%s",
		url.QueryEscape(t.cfg.Username),
		url.QueryEscape(t.cfg.Password),
		t.cfg.Host,
		t.cfg.Port,
		q.Encode(),
	)
}
