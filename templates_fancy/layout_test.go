package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOtpEmail(t *testing.T) {
	html, err := Render(OtpEmail("123456", 15*time.Minute))
	require.NoError(t, err)

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "expires in 15 minutes")
	assert.Contains(t, html, "<title>OTP for WalkIntoVoid Blogs</title>")
}

func TestOtpEmailEscapesCode(t *testing.T) {
	html, err := Render(OtpEmail("<b>", time.Minute))
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;b&gt;")
}

func TestOtpEmailText(t *testing.T) {
	assert.Equal(t,
		"Your WalkIntoVoid verification code is 654321. It expires in 15 minutes.",
		OtpEmailText("654321", 15*time.Minute))
}
