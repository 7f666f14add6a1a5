package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Caption Prompts (LLM)
// ============================================================================

// CaptionSystemPrompt defines the role of the caption model.
const CaptionSystemPrompt = `You are a meme idea generator. You will use the imgflip api to generate a meme based on an idea you suggest. Given a random template name and topics, generate a meme for the intended audience. Only use the template provided`

// captionUserPromptFormat is filled with the joined topics, the audience and the template name.
const captionUserPromptFormat = "Topics: %s\n Intended audience: %s\n Template %s"

// BuildCaptionUserPrompt renders the user message for one generation.
// Parameters:
//   - topics: topics already joined for display.
//   - audience: intended audience.
//   - templateName: name of the randomly chosen template.
// Returns:
//   - string: the user prompt.
func BuildCaptionUserPrompt(topics, audience, templateName string) string {
	return fmt.Sprintf(captionUserPromptFormat,
		strings.TrimSpace(topics), strings.TrimSpace(audience), templateName)
}

// ============================================================================
// Caption Tool
// ============================================================================

const (
	// CaptionToolName is the function the model must call with its captions.
	CaptionToolName = "generateMemeImage"
	// CaptionToolDescription describes the function to the model.
	CaptionToolDescription = "Generate a meme using the imgflip API based on the given idea"

	// CaptionTopField is the argument carrying the top caption.
	CaptionTopField = "text0"
	// CaptionBottomField is the argument carrying the bottom caption.
	CaptionBottomField = "text1"
)

// CaptionToolParameters returns the strict JSON schema of the caption tool arguments.
// Each call returns a fresh map.
func CaptionToolParameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			CaptionTopField: map[string]any{
				"type":        "string",
				"description": "The text for the top caption of the meme",
			},
			CaptionBottomField: map[string]any{
				"type":        "string",
				"description": "The text for the bottom caption of the meme",
			},
		},
		"required":             []string{CaptionTopField, CaptionBottomField},
		"additionalProperties": false,
	}
}
