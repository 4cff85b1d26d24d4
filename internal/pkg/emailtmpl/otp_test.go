package emailtmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOTP_DefaultWindow(t *testing.T) {
	msg, err := RenderOTP("482913", 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "B-Buddy - Your OTP Code", msg.Subject)
	assert.Equal(t, "Your OTP code is: 482913. Valid for 10 minutes.", msg.Text)
	assert.Contains(t, msg.HTML, ">482913</h1>")
	assert.Contains(t, msg.HTML, "<strong>10 minutes</strong>")
	assert.Contains(t, msg.HTML, "please ignore this email")
}

func TestRenderOTP_EscapesCode(t *testing.T) {
	msg, err := RenderOTP("<b>", 10*time.Minute)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;")
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "1 minute", humanize(time.Minute))
	assert.Equal(t, "15 minutes", humanize(15*time.Minute))
	assert.Equal(t, "30s", humanize(30*time.Second))
	assert.Equal(t, "1m30s", humanize(90*time.Second))
}
