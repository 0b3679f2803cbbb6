package notification

import (
	"bytes"
	"html/template"
)

const (
	VerificationSubject  = "Confirm your Mood Journal email"
	PasswordResetSubject = "Reset your Mood Journal password"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Confirm your email</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{.Username}},</p>
  <p>Thanks for signing up. Please confirm your email address by following the link below:</p>
  <p><a href="{{.Link}}">Confirm my email</a></p>
  <p>The link is valid for {{.ValidFor}}. If you did not create an account you can ignore this message.</p>
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Reset your password</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{.Username}},</p>
  <p>Someone asked to reset the password for your account. Use the link below to choose a new one:</p>
  <p><a href="{{.Link}}">Reset my password</a></p>
  <p>The link is valid for {{.ValidFor}}. If you did not ask for a reset you can ignore this message.</p>
</body>
</html>`))

type LinkEmail struct {
	Username string
	Link     string
	ValidFor string
}

func RenderVerification(data LinkEmail) (string, error) {
	return render(verificationTemplate, data)
}

func RenderPasswordReset(data LinkEmail) (string, error) {
	return render(passwordResetTemplate, data)
}

func render(tmpl *template.Template, data LinkEmail) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
