package llm

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider uses Groq's OpenAI-compatible API with a custom base URL.
func NewGroqProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if model == "" || model == "gpt-4o-mini" {
		model = "llama-3.1-8b-instant"
	}
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return newCompatibleProvider("Groq", apiKey, model, baseURL)
}
