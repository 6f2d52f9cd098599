package llm

const deepSeekBaseURL = "https://api.deepseek.com/v1"

func NewDeepSeekProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if model == "" || model == "gpt-4o-mini" {
		model = "deepseek-chat"
	}
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}
	return newCompatibleProvider("DeepSeek", apiKey, model, baseURL)
}
