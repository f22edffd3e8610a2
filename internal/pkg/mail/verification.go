package mail

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const verificationTpl = `<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto;">
  <h2>Welcome to E-Terminus{{if .Name}}, {{.Name}}{{end}}!</h2>
  <p>Please confirm your email address to activate your account.</p>
  <p><a href="{{.Link}}" style="display:inline-block;padding:10px 24px;background:#1a7f37;color:#fff;text-decoration:none;border-radius:4px;">Verify email</a></p>
  <p>If the button does not work, open this link:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>If you did not create an account, you can ignore this message.</p>
</div>`

type verificationData struct {
	Name string
	Link string
}

// SendVerificationEmail mails the account-activation link for a freshly
// registered (or re-requested) verification token.
func (s *Sender) SendVerificationEmail(address, name, token, baseURL string) error {
	link := verificationLink(baseURL, token)

	tpl, err := template.New("verify").Parse(verificationTpl)
	if err != nil {
		return err
	}
	var buf strings.Builder
	if err := tpl.Execute(&buf, verificationData{Name: name, Link: link}); err != nil {
		return err
	}

	return s.Send(Message{
		To:      []string{address},
		Subject: "Verify your E-Terminus account",
		HTML:    buf.String(),
	})
}

func verificationLink(baseURL, token string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost:8808"
	}
	return fmt.Sprintf("%s/api/v1/auth/verify?token=%s", base, url.QueryEscape(token))
}
