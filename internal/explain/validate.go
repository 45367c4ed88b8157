package explain

import (
	"strings"
	"unicode/utf8"

	"github.com/thinkscotty/explainer/internal/safety"
)

// MaxTextLength is the longest accepted input, in characters after trimming.
const MaxTextLength = 10000

// Validate trims text and rejects it when empty, too long, or harmful.
func Validate(sc *safety.Scanner, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", invalidInput(MsgTextEmpty)
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", invalidInput(MsgTextTooLong)
	}
	if sc.Harmful(trimmed) {
		return "", invalidInput(MsgHarmfulInput)
	}
	return trimmed, nil
}
