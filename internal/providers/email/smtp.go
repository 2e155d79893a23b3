package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg       Config
	templates map[string]*template.Template
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg, templates: parseTemplates()}
}

func (p *SMTPProvider) Send(ctx context.Context, templateName, to string, data map[string]any) error {
	tmpl, ok := p.templates[templateName]
	if !ok {
		tmpl = p.templates[BaseThankYouTemplate]
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	subject := "Thank you for your donation"
	if s, ok := data["subject"].(string); ok && s != "" {
		subject = s
	}

	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to, subject, mime, body.String()))

	return smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
}

func parseTemplates() map[string]*template.Template {
	sources := map[string]string{
		BaseThankYouTemplate: `<p>Hi {{.name}},</p>
<p>Thank you for supporting {{.collective}} with your donation of {{.amount}} {{.currency}}.</p>`,
		"thankyou.opensource": `<p>Hi {{.name}},</p>
<p>Your donation of {{.amount}} {{.currency}} keeps {{.collective}} open and maintained. Thank you!</p>`,
		"thankyou.fr": `<p>Bonjour {{.name}},</p>
<p>Merci pour votre don de {{.amount}} {{.currency}} en soutien &agrave; {{.collective}}.</p>`,
		"thankyou.wwcode": `<p>Hi {{.name}},</p>
<p>Thank you for backing {{.collective}}! Your {{.amount}} {{.currency}} donation funds our community events.</p>`,
	}

	parsed := make(map[string]*template.Template, len(sources))
	for name, source := range sources {
		parsed[name] = template.Must(template.New(name).Parse(source))
	}
	return parsed
}
