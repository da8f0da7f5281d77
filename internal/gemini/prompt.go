package gemini

import (
	"fmt"

	"github.com/thinkscotty/postcraft/internal/models"
)

const promptTemplate = `
Respond ONLY in JSON. NO explanation. Output keys:
- main_post (string)
- variants (array of 3 strings)
- hashtags (array of 10 strings)
- imagePrompt (string)

Context:
topic = %s
tone = %s
platform = %s
brandKeywords = %s
`

// BuildPrompt renders the fixed JSON-only instruction for one request.
func BuildPrompt(req models.GenerationRequest) string {
	return fmt.Sprintf(promptTemplate, req.Topic, req.Tone, req.Platform, req.BrandKeywords)
}
