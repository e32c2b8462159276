package domain

import (
	"net/mail"
	"strings"
)

// MaxScreenshotBytes caps the screenshot attached to a top-tool claim.
const MaxScreenshotBytes = 5 << 20

// TopToolSubmission is the form a user fills to claim the top-tool reward.
type TopToolSubmission struct {
	Email          string `json:"email"`
	ScreenshotName string `json:"screenshot_name"`
	ScreenshotType string `json:"screenshot_type"`
	ScreenshotSize int64  `json:"screenshot_size"`

	// file content, only carried by clients uploading the form
	Screenshot []byte `json:"-"`
}

// Validate rejects malformed submissions locally.
func (s TopToolSubmission) Validate() error {
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "please enter your sign-up email"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if s.ScreenshotName == "" || s.ScreenshotSize <= 0 {
		return &ValidationError{Field: "screenshot", Message: "please upload a screenshot of your profile"}
	}
	if !strings.HasPrefix(s.ScreenshotType, "image/") {
		return &ValidationError{Field: "screenshot", Message: "screenshot must be an image"}
	}
	if s.ScreenshotSize > MaxScreenshotBytes {
		return &ValidationError{Field: "screenshot", Message: "screenshot is larger than 5 MiB"}
	}
	return nil
}

// Meta returns the claim metadata stored with a granted top-tool claim.
func (s TopToolSubmission) Meta() map[string]any {
	return map[string]any{
		"email":      strings.TrimSpace(s.Email),
		"screenshot": s.ScreenshotName,
		"status":     "pending",
	}
}
