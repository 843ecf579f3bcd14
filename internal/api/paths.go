// Package api provides the Gemini API clients used as generation backends.
package api

// GJSON paths for extracting values from generateContent responses.
const (
	PathCandidates     = "candidates"
	PathPromptBlock    = "promptFeedback.blockReason"
	PathModelVersion   = "modelVersion"
	PathCandParts      = "content.parts.#.text"
	PathCandFinish     = "finishReason"
	PathErrorMessage   = "error.message"
	PathErrorStatus    = "error.status"
	PathErrorKeyReason = `error.details.#(reason=="API_KEY_INVALID")`
)

// Finish reasons that mean the answer was withheld
var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}
