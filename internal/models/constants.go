// Package models contains data types and constants for the Gemini API.
package models

import "fmt"

// Endpoints for the Gemini API
const (
	EndpointBase = "https://generativelanguage.googleapis.com/v1beta"
)

// GenerateEndpoint returns the generateContent URL for a model
func GenerateEndpoint(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent", EndpointBase, model)
}

// Available models
const (
	Model25Pro       = "gemini-2.5-pro"
	Model25Flash     = "gemini-2.5-flash"
	Model25FlashLite = "gemini-2.5-flash-lite"

	// DefaultModel is the model used when nothing else is configured
	DefaultModel = Model25Pro
)

// AllModels returns a list of all known models
func AllModels() []string {
	return []string{Model25Pro, Model25Flash, Model25FlashLite}
}

// IsKnownModel returns true if name is one of AllModels
func IsKnownModel(name string) bool {
	for _, m := range AllModels() {
		if m == name {
			return true
		}
	}
	return false
}

// HarmCategory names a safety category using the API's enum spelling
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// HarmBlockThreshold names a blocking threshold using the API's enum spelling
type HarmBlockThreshold string

const (
	BlockLowAndAbove    HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone           HarmBlockThreshold = "BLOCK_NONE"
)

// SafetySetting pairs a category with its threshold
type SafetySetting struct {
	Category  HarmCategory       `json:"category"`
	Threshold HarmBlockThreshold `json:"threshold"`
}

// GenerationSettings are the sampling parameters sent with every request
type GenerationSettings struct {
	Temperature      float32         `json:"temperature"`
	TopP             float32         `json:"top_p"`
	TopK             int32           `json:"top_k"`
	MaxOutputTokens  int32           `json:"max_output_tokens"`
	ResponseMIMEType string          `json:"response_mime_type"`
	SafetySettings   []SafetySetting `json:"safety_settings"`
}

// DefaultGenerationSettings returns the settings the chat has always used
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		Temperature:      1,
		TopP:             0.95,
		TopK:             64,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
		SafetySettings: []SafetySetting{
			{Category: HarmCategoryHarassment, Threshold: BlockMediumAndAbove},
			{Category: HarmCategoryHateSpeech, Threshold: BlockMediumAndAbove},
			{Category: HarmCategorySexuallyExplicit, Threshold: BlockMediumAndAbove},
			{Category: HarmCategoryDangerousContent, Threshold: BlockMediumAndAbove},
		},
	}
}
