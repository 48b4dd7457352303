package utils

import (
	"strings"
	"unicode/utf8"

	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

const (
	MaxThreadNameLen = 15
	// characters the staff board refuses in thread names
	forbiddenThreadChars = "`\\\"%^&*()_-|;/"
)

type ThreadNameValidator struct{}

func (v *ThreadNameValidator) Name(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return internal_errors.Validation("thread name cannot be empty")
	}
	if utf8.RuneCountInString(n) > MaxThreadNameLen {
		return internal_errors.Validation("thread name cannot be longer than %d characters", MaxThreadNameLen)
	}
	if strings.ContainsAny(n, forbiddenThreadChars) {
		return internal_errors.Validation("thread name contains an invalid character")
	}
	return nil
}

type ReplyValidator struct{}

// Text applies the same bounds as post content.
func (v *ReplyValidator) Text(text string) error {
	if strings.TrimSpace(text) == "" {
		return internal_errors.Validation("reply is empty")
	}
	if utf8.RuneCountInString(text) > 4096 {
		return internal_errors.Validation("reply is too long")
	}
	return nil
}
