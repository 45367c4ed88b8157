package explain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Request is a single explain call as received from the caller.
type Request struct {
	Text       string           `json:"text"`
	Simplicity Simplicity       `json:"simplicity"`
	Tone       Tone             `json:"tone"`
	Files      []FileAttachment `json:"files" validate:"max=10,dive"`
}

// FileAttachment is an uploaded file. Data is base64-encoded.
type FileAttachment struct {
	Name     string `json:"name" validate:"required,max=255"`
	MIMEType string `json:"mimeType,omitempty" validate:"max=255"`
	Data     string `json:"data" validate:"required"`
	IsImage  bool   `json:"isImage,omitempty"`
}

// Simplicity selects the target reading level.
type Simplicity int

const (
	Age5 Simplicity = iota
	Age7
	Age10
	Age15
	Age18
	Age25
	Professional
	Graduate
	Expert
)

// Instruction returns the canned reading-level instruction. ok is false for
// values outside Age5..Expert.
func (s Simplicity) Instruction() (string, bool) {
	switch s {
	case Age5:
		return "Explain this as if I'm 5 years old. Use very simple words, short sentences, and fun analogies. Make it super easy to understand.", true
	case Age7:
		return "Explain this as if I'm 7 years old. Use simple explanations with easy words. Use comparisons to everyday things.", true
	case Age10:
		return "Explain this as if I'm 10 years old. Use clear explanations with familiar concepts. Avoid jargon and technical terms.", true
	case Age15:
		return "Explain this as if I'm 15 years old. Use straightforward explanations with some detail. Accessible to teenagers.", true
	case Age18:
		return "Explain this as if I'm 18 years old. Use detailed explanations with context. Uses clear language suitable for adults.", true
	case Age25:
		return "Explain this as if I'm 25 years old. Use comprehensive explanations with examples. Assumes some general knowledge.", true
	case Professional:
		return "Explain this as if I'm a professional. Use professional explanations with structured information. Business-appropriate tone.", true
	case Graduate:
		return "Explain this as if I'm a graduate student. Use academic explanations with precise language. Suitable for graduate-level understanding.", true
	case Expert:
		return "Explain this as if I'm an expert. Use expert-level explanations with technical depth. Assumes advanced knowledge.", true
	default:
		return "", false
	}
}

// TonePreset is one of the canned tones.
type TonePreset int

const (
	ToneFriendly TonePreset = iota
	ToneTeacher
	ToneFunny
	ToneCalm
	ToneProfessional
	ToneEnthusiastic
)

// Instruction returns the canned tone instruction. ok is false for values
// outside ToneFriendly..ToneEnthusiastic.
func (p TonePreset) Instruction() (string, bool) {
	switch p {
	case ToneFriendly:
		return "Use a friendly, warm, and approachable tone. Be conversational and make it feel like talking to a friend.", true
	case ToneTeacher:
		return "Use an educational, teacher-like tone. Be clear, structured, and helpful with step-by-step explanations.", true
	case ToneFunny:
		return "Use a funny, light-hearted, and meme-style tone. Add humor and make it entertaining while still being informative.", true
	case ToneCalm:
		return "Use a calm, poetic, and serene tone. Be gentle, thoughtful, and contemplative.", true
	case ToneProfessional:
		return "Use a professional, business-focused tone. Be formal, concise, and authoritative.", true
	case ToneEnthusiastic:
		return "Use an enthusiastic, energetic, and excited tone. Be passionate, positive, and inspiring.", true
	default:
		return "", false
	}
}

func (p TonePreset) String() string {
	switch p {
	case ToneFriendly:
		return "friendly"
	case ToneTeacher:
		return "teacher"
	case ToneFunny:
		return "funny"
	case ToneCalm:
		return "calm"
	case ToneProfessional:
		return "professional"
	case ToneEnthusiastic:
		return "enthusiastic"
	default:
		return "tone(" + strconv.Itoa(int(p)) + ")"
	}
}

// Tone is either a preset or a free-form custom style. The zero value is the
// friendly preset.
type Tone struct {
	preset TonePreset
	style  string
	custom bool
}

// PresetTone returns a preset tone.
func PresetTone(p TonePreset) Tone { return Tone{preset: p} }

// CustomTone returns a free-form tone.
func CustomTone(style string) Tone { return Tone{style: style, custom: true} }

func (t Tone) IsCustom() bool      { return t.custom }
func (t Tone) Preset() TonePreset  { return t.preset }
func (t Tone) CustomStyle() string { return t.style }

// Instruction resolves the tone into the prompt instruction.
func (t Tone) Instruction() (string, error) {
	if t.custom {
		style := strings.TrimSpace(t.style)
		if style == "" {
			return "", invalidParameter(MsgInvalidTone)
		}
		return "Use a " + strings.ToLower(style) + " tone. Be creative, authentic, and match the requested style exactly. " +
			"If the tone is \"" + style + "\", embody that tone throughout the explanation.", nil
	}
	ins, ok := t.preset.Instruction()
	if !ok {
		return "", invalidParameter(MsgInvalidTone)
	}
	return ins, nil
}

// Label is a short description for logs. Custom tones are reported as
// "custom" without the caller's style text.
func (t Tone) Label() string {
	if t.custom {
		return "custom"
	}
	return t.preset.String()
}

// UnmarshalJSON accepts an integer preset or a custom style string.
func (t *Tone) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = CustomTone(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("tone must be an integer or a string")
	}
	*t = PresetTone(TonePreset(n))
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (t Tone) MarshalJSON() ([]byte, error) {
	if t.custom {
		return json.Marshal(t.style)
	}
	return json.Marshal(int(t.preset))
}

// Part is one unit of model input: TextPart or FilePart.
type Part interface {
	isPart()
}

type TextPart struct {
	Text string
}

type FilePart struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (TextPart) isPart() {}
func (FilePart) isPart() {}

// FinishReason is why the model stopped generating.
type FinishReason int

const (
	FinishOther FinishReason = iota
	FinishStop
	FinishSafety
	FinishRecitation
)

func (f FinishReason) String() string {
	switch f {
	case FinishStop:
		return "STOP"
	case FinishSafety:
		return "SAFETY"
	case FinishRecitation:
		return "RECITATION"
	default:
		return "OTHER"
	}
}

// Probability is the model's harm probability for one category.
type Probability int

const (
	ProbabilityUnknown Probability = iota
	ProbabilityNegligible
	ProbabilityLow
	ProbabilityMedium
	ProbabilityHigh
)

type SafetyRating struct {
	Category    string
	Probability Probability
}

// ModelResponse is the provider-neutral view of a model reply.
type ModelResponse struct {
	Text          string
	FinishReason  FinishReason
	SafetyRatings []SafetyRating
	TokensUsed    int
	Model         string
}

// Blocked reports whether the reply must be discarded for safety reasons,
// regardless of any text it carries.
func (r *ModelResponse) Blocked() bool {
	if r.FinishReason == FinishSafety || r.FinishReason == FinishRecitation {
		return true
	}
	return lo.SomeBy(r.SafetyRatings, func(sr SafetyRating) bool {
		return sr.Probability == ProbabilityHigh || sr.Probability == ProbabilityMedium
	})
}

// InputKind describes what the caller supplied.
type InputKind string

const (
	InputText  InputKind = "text"
	InputURL   InputKind = "url"
	InputFiles InputKind = "files"
)

// Result is a successful explanation.
type Result struct {
	Explanation string
	Input       InputKind
	SourceURL   string
	TokensUsed  int
	Model       string
}
