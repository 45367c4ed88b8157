package explain

import (
	"errors"
	"strings"

	"github.com/thinkscotty/explainer/internal/safety"
)

// MaxExplanationLength is the longest explanation returned, in characters,
// before the ellipsis marker.
const MaxExplanationLength = 1000

// Filter applies the post-call checks to model output: it must be non-empty,
// must pass the harm scan, and is truncated to MaxExplanationLength.
func Filter(sc *safety.Scanner, raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &Error{Kind: KindEmptyResponse, Message: MsgEmptyResponse}
	}
	if sc.Harmful(text) {
		return "", Blocked(errors.New("model output matched harmful pattern"))
	}
	runes := []rune(text)
	if len(runes) > MaxExplanationLength {
		return string(runes[:MaxExplanationLength]) + "...", nil
	}
	return text, nil
}
