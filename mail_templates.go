package auth

import (
	"html/template"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// SubjectVerification is the subject line of the signup email
	SubjectVerification = "Email Verification Code"
	// SubjectPasswordReset is the subject line of the reset email
	SubjectPasswordReset = "Password Reset Request"
)

// EmailData feeds the transactional email templates
type EmailData struct {
	Name string
	Code string
	Link string
}

const emailShell = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>{{.Title}}</title>
    <style>
      body { font-family: Arial, sans-serif; background-color: #f4f4f7; color: #333; margin: 0; padding: 0; }
      .email-container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 8px rgba(0, 0, 0, 0.1); }
      .header { background-color: black; color: #ffffff; padding: 20px; text-align: center; font-size: 24px; }
      .content { padding: 20px; line-height: 1.6; }
      .content h2 { color: black; font-size: 22px; margin-top: 0; }
      .code-box { background-color: #f0f4ff; color: black; font-size: 28px; font-weight: bold; text-align: center; padding: 15px; margin: 20px 0; border-radius: 8px; }
      .btn { display: inline-block; background-color: black; color: white; text-decoration: none; padding: 12px 24px; border-radius: 4px; font-size: 16px; margin-top: 20px; text-align: center; }
      .footer { text-align: center; color: #aaa; font-size: 12px; padding: 20px; border-top: 1px solid #eaeaea; }
      a { color: white; }
    </style>
  </head>
  <body>
    <div class="email-container">
      <div class="header">{{.Title}}</div>
      <div class="content">
        <h2>Hello {{.Name}},</h2>
        <p>{{.Intro}}</p>
        <div class="code-box">{{.Code}}</div>
        <p>{{.Outro}}</p>
        <a href="{{.Link}}" class="btn">{{.Action}}</a>
      </div>
      <div class="footer">&copy; 2024 Unilink. All rights reserved.</div>
    </div>
  </body>
</html>
`

type emailContent struct {
	Title  string
	Name   string
	Intro  string
	Code   string
	Outro  string
	Action string
	Link   string
}

var emailTemplate = template.Must(template.New("email").Parse(emailShell))

// VerificationEmailHTML renders the signup verification email body
func VerificationEmailHTML(data EmailData) (string, error) {
	return renderEmail(emailContent{
		Title:  "Email Verification",
		Name:   data.Name,
		Intro:  "Welcome to Unilink! Use the verification code below to complete your registration:",
		Code:   data.Code,
		Outro:  "If you didn't create an account, please ignore this email or contact support if you have concerns.",
		Action: "Verify Email",
		Link:   data.Link,
	})
}

// PasswordResetEmailHTML renders the password reset email body
func PasswordResetEmailHTML(data EmailData) (string, error) {
	return renderEmail(emailContent{
		Title:  "Password Reset Request",
		Name:   data.Name,
		Intro:  "You requested to reset your password. Use the verification code below to complete the process:",
		Code:   data.Code,
		Outro:  "If you didn't request a password reset, please ignore this email or contact support if you have concerns.",
		Action: "Reset Password",
		Link:   data.Link,
	})
}

func renderEmail(content emailContent) (string, error) {
	var b strings.Builder
	if err := emailTemplate.Execute(&b, content); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render email template")
	}
	return b.String(), nil
}
