// Package emailtmpl renders the one-time passcode email.
package emailtmpl

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const OTPSubject = "B-Buddy - Your OTP Code"

var otpHTML = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; border-radius: 10px 10px 0 0; text-align: center;">
        <h1 style="color: white; margin: 0;">B-Buddy</h1>
    </div>
    <div style="background: white; padding: 40px; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Email Verification</h2>
        <p style="color: #666; font-size: 16px;">Your OTP code is:</p>
        <div style="background: #f0f0f0; padding: 20px; border-radius: 8px; text-align: center; margin: 30px 0;">
            <h1 style="color: #667eea; font-size: 42px; letter-spacing: 10px; margin: 0;">{{.Code}}</h1>
        </div>
        <p style="color: #666; font-size: 14px;">This code will expire in <strong>{{.Validity}}</strong>.</p>
        <p style="color: #999; font-size: 12px; margin-top: 30px;">If you didn't request this code, please ignore this email.</p>
    </div>
</div>
`))

// OTP is the rendered passcode email.
type OTP struct {
	Subject string
	Text    string
	HTML    string
}

// RenderOTP builds the subject, plain-text and HTML bodies for code valid for ttl.
func RenderOTP(code string, ttl time.Duration) (OTP, error) {
	validity := humanize(ttl)
	var buf bytes.Buffer
	err := otpHTML.Execute(&buf, struct {
		Code     string
		Validity string
	}{Code: code, Validity: validity})
	if err != nil {
		return OTP{}, fmt.Errorf("render otp email: %w", err)
	}
	return OTP{
		Subject: OTPSubject,
		Text:    fmt.Sprintf("Your OTP code is: %s. Valid for %s.", code, validity),
		HTML:    buf.String(),
	}, nil
}

// humanize prints whole minutes as "N minutes", anything else via Duration.String.
func humanize(d time.Duration) string {
	if d%time.Minute != 0 || d < time.Minute {
		return d.String()
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
