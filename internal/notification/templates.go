package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

var otpTemplate = template.Must(template.New("otp").Parse(
	`<p>Hello {{.FirstName}},</p>` +
		`<p>Your {{.Purpose}} OTP is <b>{{.Code}}</b></p>` +
		`<p>This code will expire in {{.Minutes}} minutes.</p>`))

// OTPEmail is the data rendered into a one-time password email.
type OTPEmail struct {
	FirstName string
	Purpose   string
	Code      string
	Minutes   int
}

// Render produces the HTML body.
func (e OTPEmail) Render() (string, error) {
	data := e
	data.FirstName = capitalize(e.FirstName)
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
