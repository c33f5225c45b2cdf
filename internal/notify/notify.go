// Package notify mails finished reports.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"absence-tracker/internal/components/assert"
	"absence-tracker/internal/reportview"
	"absence-tracker/internal/service"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("absence-tracker/notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

type Mailer struct {
	smtp SmtpConfig
	to   []string
}

func NewMailer(smtp SmtpConfig, to []string) Mailer {
	assert.NotEmptyStr(smtp.Server)
	assert.NotEmptyStr(smtp.EmailAddress)
	return Mailer{smtp: smtp, to: to}
}

// Compose renders the report and leave weeks of a result into a plain text
// mail.
func (m Mailer) Compose(result service.Result) *email.Email {
	body := &bytes.Buffer{}
	view := reportview.NewPlain(body)

	fmt.Fprintf(body, "缺曠課統計 %s\n\n", result.RanAt.Format("2006-01-02 15:04"))
	view.Summary(result.Report.Courses)
	view.Warnings(result.Report.Warnings)
	view.Title("假單記錄週別")
	view.LeaveWeeks(result.LeaveWeeks)

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Absence Tracker <%s>", m.smtp.EmailAddress)
	mail.To = m.to
	mail.Subject = fmt.Sprintf("缺曠課統計 %s", result.RanAt.Format("2006-01-02"))
	mail.Text = body.Bytes()
	return mail
}

// Send mails the result, it falls back to sending without authentication when
// the server does not support AUTH.
func (m Mailer) Send(ctx context.Context, result service.Result) error {
	_, span := tracer.Start(ctx, "notify:Send")
	defer span.End()

	if len(m.to) == 0 {
		return fmt.Errorf("notify: no recipients configured")
	}

	mail := m.Compose(result)
	err := mail.Send(
		m.smtp.addr(),
		smtp.PlainAuth("", m.smtp.EmailAddress, m.smtp.Password, m.smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(m.smtp.addr(), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
