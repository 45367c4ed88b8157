package explain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const promptIntro = "You are an expert at explaining complex concepts in simple terms."

const safetyGuidelines = `CRITICAL SAFETY GUIDELINES:
- NEVER explain, promote, or provide instructions for self-harm, suicide, violence, or illegal activities
- NEVER generate explicit, sexual, or adult content
- NEVER provide medical advice, treatment recommendations, or diagnoses
- NEVER create content that could cause harm to individuals or groups
`

// Compose builds the ordered content parts for the model and returns the
// instruction prompt embedded in them.
func Compose(processedText string, simplicity Simplicity, tone Tone, files []FileAttachment) ([]Part, string, error) {
	simplicityPrompt, ok := simplicity.Instruction()
	if !ok {
		return nil, "", invalidParameter(MsgInvalidSimplicity)
	}
	tonePrompt, err := tone.Instruction()
	if err != nil {
		return nil, "", err
	}

	var content []Part
	if processedText != "" {
		content = append(content, TextPart{Text: processedText})
	}
	for _, f := range files {
		fp, err := filePart(f)
		if err != nil {
			return nil, "", err
		}
		content = append(content, fp)
	}
	if len(content) == 0 {
		return nil, "", invalidParameter(MsgNoContent)
	}

	if len(files) > 0 {
		prompt := BuildFilePrompt(processedText, simplicityPrompt, tonePrompt, files)
		return append(content, TextPart{Text: prompt}), prompt, nil
	}

	prompt := BuildTextPrompt(processedText, simplicityPrompt, tonePrompt)
	return append([]Part{TextPart{Text: prompt}}, content...), prompt, nil
}

// BuildTextPrompt constructs the prompt used when only text was supplied.
func BuildTextPrompt(text, simplicityPrompt, tonePrompt string) string {
	var sb strings.Builder

	sb.WriteString(promptIntro)
	sb.WriteString(" Your task is to explain the given content in exactly 2-3 sentences.\n\n")

	sb.WriteString(safetyGuidelines)
	sb.WriteString("- If the input contains harmful content, politely decline and suggest the user seek appropriate professional help or resources\n")
	sb.WriteString("- Focus only on educational, informative, and safe explanations\n\n")

	writeContentGuidelines(&sb, simplicityPrompt, tonePrompt, "Focus on the main idea")

	sb.WriteString(fmt.Sprintf("\nText to explain: %s\n\n", text))
	sb.WriteString("Provide your explanation in 2-3 simple sentences. If the content is inappropriate or harmful, politely decline.")

	return sb.String()
}

// BuildFilePrompt constructs the prompt used when files are attached. The
// files are the primary subject; any text is secondary context.
func BuildFilePrompt(text, simplicityPrompt, tonePrompt string, files []FileAttachment) string {
	var sb strings.Builder

	names := lo.Map(files, func(f FileAttachment, _ int) string { return f.Name })

	sb.WriteString(promptIntro)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("CRITICAL INSTRUCTION: You have been provided with %d file(s): %s.\n\n",
		len(files), strings.Join(names, ", ")))
	sb.WriteString("YOUR PRIMARY TASK: Read and analyze the CONTENT of these files. ")
	sb.WriteString("Extract information from the files and explain what they contain.\n\n")

	if lo.SomeBy(files, isPDF) {
		sb.WriteString("For PDF files: Extract all text content, read the document, and explain what it says. ")
		sb.WriteString("Summarize the key information and main points found in the PDF.\n")
	}
	if lo.SomeBy(files, isImage) {
		sb.WriteString("For image files: Look at the image carefully, describe what you see, and explain the visual content.\n")
	}

	if text != "" {
		sb.WriteString("\nNote: The user also provided this text: \"" + text + "\". ")
		sb.WriteString("Use this as context or additional instruction, but the PRIMARY focus should be analyzing and explaining the FILE CONTENT.\n")
	}

	sb.WriteString("\n")
	sb.WriteString(safetyGuidelines)
	sb.WriteString("- If the content contains harmful material, politely decline\n\n")

	writeContentGuidelines(&sb, simplicityPrompt, tonePrompt, "Focus on the main idea from the FILE CONTENT")

	sb.WriteString("\nYOUR RESPONSE: Explain what you found in the attached file(s) in 2-3 simple sentences. ")
	sb.WriteString("Base your explanation on the actual content of the files, not on the user's question. ")
	sb.WriteString("If the content is inappropriate or harmful, politely decline.")

	return sb.String()
}

func writeContentGuidelines(sb *strings.Builder, simplicityPrompt, tonePrompt, focus string) {
	sb.WriteString("CONTENT GUIDELINES:\n")
	sb.WriteString(fmt.Sprintf("- %s\n", simplicityPrompt))
	sb.WriteString(fmt.Sprintf("- %s\n", tonePrompt))
	sb.WriteString("- Keep it to exactly 2-3 sentences\n")
	sb.WriteString("- Make it easy to understand\n")
	sb.WriteString(fmt.Sprintf("- %s\n", focus))
	sb.WriteString("- Do not include any URLs or external references\n")
	sb.WriteString("- Maintain a safe, educational, and appropriate tone\n")
}
