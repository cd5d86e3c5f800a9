// Package mailing 通过 SMTP 发送诊断报告
package mailing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/pigeonplanner/pigeonplanner/src/configs"
)

var ErrNotConfigured = errors.New("mail is not configured")

type Mailer struct {
	cfg configs.Mail
	// sender 为空时通过 SMTP 直接发送
	sender gomail.Sender
}

func New(cfg configs.Mail) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) validate() error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPPort == 0 {
		return fmt.Errorf("%w: smtp host or port missing", ErrNotConfigured)
	}
	if m.cfg.SenderEmail == "" || m.cfg.RecipientEmail == "" {
		return fmt.Errorf("%w: sender or recipient missing", ErrNotConfigured)
	}
	return nil
}

// Send 发送纯文本邮件，attachments 中不存在的文件会被跳过
func (m *Mailer) Send(subject, body string, attachments ...string) error {
	if err := m.validate(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SenderEmail)
	msg.SetHeader("To", m.cfg.RecipientEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			logrus.WithField("attachment", path).WithError(err).Warn("skipping attachment")
			continue
		}
		msg.Attach(path)
	}

	var err error
	if m.sender != nil {
		err = gomail.Send(m.sender, msg)
	} else {
		d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SenderEmail, m.cfg.SenderPassword)
		err = d.DialAndSend(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	logrus.WithFields(logrus.Fields{"to": m.cfg.RecipientEmail, "subject": subject}).Info("mail sent")
	return nil
}

// Report 诊断报告的内容
type Report struct {
	Comment   string
	Info      map[string]string
	Integrity []string
}

// Body 生成报告正文，Info 按键排序
func (r Report) Body() string {
	var sb strings.Builder
	if r.Comment != "" {
		sb.WriteString(r.Comment)
		sb.WriteString("\n\n")
	}
	keys := make([]string, 0, len(r.Info))
	for k := range r.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, r.Info[k])
	}
	if len(r.Integrity) > 0 {
		sb.WriteString("\nintegrity_check:\n")
		for _, line := range r.Integrity {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
