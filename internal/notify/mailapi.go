package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ms-tradein/internal/config"
	"ms-tradein/internal/logger"
)

// MailClient talks to a SendGrid-compatible /v3/mail/send endpoint. In mock
// mode nothing leaves the process and every email is only logged.
type MailClient struct {
	http     *resty.Client
	from     string
	fromName string
	mock     bool
	log      *logger.Logger
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailAttachment struct {
	Content     string `json:"content"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
	Attachments      []mailAttachment      `json:"attachments,omitempty"`
}

func NewMailClient(cfg config.EmailConfig, log *logger.Logger) *MailClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &MailClient{
		http:     client,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		mock:     cfg.MockMode,
		log:      log,
	}
}

func (c *MailClient) Send(ctx context.Context, email Email) error {
	if c.mock {
		c.log.Info("MAIL", fmt.Sprintf("[mock] to=%s subject=%q attachments=%d", email.To, email.Subject, len(email.Attachments)))
		return nil
	}

	req := mailRequest{
		Personalizations: []mailPersonalization{{To: []mailAddress{{Email: email.To, Name: email.ToName}}}},
		From:             mailAddress{Email: c.from, Name: c.fromName},
		Subject:          email.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: email.Body}},
	}
	for _, a := range email.Attachments {
		req.Attachments = append(req.Attachments, mailAttachment{
			Content:     a.Content,
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", email.To, err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail api returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	c.log.Info("MAIL", fmt.Sprintf("Sent %q to %s", email.Subject, email.To))
	return nil
}
