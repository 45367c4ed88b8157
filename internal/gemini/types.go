package gemini

import (
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/thinkscotty/explainer/internal/explain"
)

// Interpret converts an SDK response into the provider-neutral form. Only the
// first candidate is read.
func Interpret(resp *genai.GenerateContentResponse) *explain.ModelResponse {
	out := &explain.ModelResponse{}
	if resp == nil {
		return out
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		out.FinishReason = explain.FinishSafety
		return out
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}

	cand := resp.Candidates[0]
	out.FinishReason = finishReason(cand.FinishReason)
	out.Text = candidateText(cand)
	for _, r := range cand.SafetyRatings {
		if r == nil {
			continue
		}
		out.SafetyRatings = append(out.SafetyRatings, explain.SafetyRating{
			Category:    fmt.Sprint(r.Category),
			Probability: probability(r.Probability),
		})
	}
	return out
}

func candidateText(c *genai.Candidate) string {
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func finishReason(r genai.FinishReason) explain.FinishReason {
	switch r {
	case genai.FinishReasonStop, genai.FinishReasonMaxTokens:
		return explain.FinishStop
	case genai.FinishReasonSafety:
		return explain.FinishSafety
	case genai.FinishReasonRecitation:
		return explain.FinishRecitation
	default:
		return explain.FinishOther
	}
}

func probability(p genai.HarmProbability) explain.Probability {
	switch p {
	case genai.HarmProbabilityNegligible:
		return explain.ProbabilityNegligible
	case genai.HarmProbabilityLow:
		return explain.ProbabilityLow
	case genai.HarmProbabilityMedium:
		return explain.ProbabilityMedium
	case genai.HarmProbabilityHigh:
		return explain.ProbabilityHigh
	default:
		return explain.ProbabilityUnknown
	}
}
