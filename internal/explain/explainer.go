package explain

import (
	"context"
	"log/slog"
	"strings"

	"github.com/thinkscotty/explainer/internal/safety"
)

// URLResolver turns URL input into page text.
type URLResolver interface {
	IsURL(s string) bool
	FetchContent(ctx context.Context, rawURL string) (string, error)
}

// Model sends composed parts to a generative model.
type Model interface {
	Invoke(ctx context.Context, parts []Part) (*ModelResponse, error)
}

// Explainer runs the explain pipeline. It holds no per-request state and is
// safe for concurrent use.
type Explainer struct {
	scanner  *safety.Scanner
	resolver URLResolver
	model    Model
}

// New creates an Explainer. A nil resolver disables URL fetching; a nil model
// makes every call fail with a configuration error.
func New(sc *safety.Scanner, resolver URLResolver, model Model) *Explainer {
	if sc == nil {
		sc = safety.Default()
	}
	return &Explainer{scanner: sc, resolver: resolver, model: model}
}

// Ready reports the configuration error every call would fail with, or nil.
func (e *Explainer) Ready() error {
	if e.model == nil {
		return MissingAPIKey()
	}
	return nil
}

// Explain validates the request, composes the prompt, calls the model and
// filters its reply.
func (e *Explainer) Explain(ctx context.Context, req Request) (*Result, error) {
	if err := e.Ready(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Files) == 0 {
		return nil, invalidInput(MsgTextOrFiles)
	}
	if text != "" {
		var err error
		if text, err = Validate(e.scanner, text); err != nil {
			return nil, err
		}
	}

	if _, ok := req.Simplicity.Instruction(); !ok {
		return nil, invalidParameter(MsgInvalidSimplicity)
	}
	if _, err := req.Tone.Instruction(); err != nil {
		return nil, err
	}

	result := &Result{Input: InputText}
	if len(req.Files) > 0 {
		result.Input = InputFiles
	}

	processed := text
	if text != "" && e.resolver != nil && e.resolver.IsURL(text) {
		content, err := e.resolver.FetchContent(ctx, text)
		if err != nil {
			slog.Warn("URL fetch failed, treating URL as text", "url", text, "error", err)
		} else {
			processed = content
			result.SourceURL = text
			if result.Input == InputText {
				result.Input = InputURL
			}
		}
	}

	parts, _, err := Compose(processed, req.Simplicity, req.Tone, req.Files)
	if err != nil {
		return nil, err
	}

	slog.Debug("Invoking model",
		"parts", len(parts),
		"files", len(req.Files),
		"simplicity", int(req.Simplicity),
		"tone", req.Tone.Label(),
	)

	resp, err := e.model.Invoke(ctx, parts)
	if err != nil {
		return nil, err
	}
	if resp.Blocked() {
		return nil, Blocked(nil)
	}

	explanation, err := Filter(e.scanner, resp.Text)
	if err != nil {
		return nil, err
	}

	result.Explanation = explanation
	result.TokensUsed = resp.TokensUsed
	result.Model = resp.Model
	return result, nil
}
