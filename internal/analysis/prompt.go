package analysis

import (
	"strings"
	"unicode/utf8"
)

const promptTemplate = `
You are an expert document and report analyzer with expertise in multiple domains. I need you to thoroughly analyze the following document and provide a comprehensive assessment.

Document name: "{{FILE_NAME}}"

DOCUMENT TEXT TO ANALYZE:
{{TEXT}}

ANALYSIS INSTRUCTIONS:
1. First determine if the document text appears to be readable content or if it appears to be binary/corrupted content.
   If it's binary/corrupted, indicate this in your summary and do your best with what you can interpret.

2. Create a concise 1-2 paragraph summary of the document's main content and purpose.

3. Extract 5-6 key insights from the document that represent the most important information.

4. Identify the main themes, topics, and subject areas of the document.

5. Assess the sentiment of the document (positive, negative, neutral) and provide a confidence score.

6. Provide 3-5 specific, actionable recommendations based on the document content.

7. Note any important metrics, data points, or statistics mentioned in the document.

FORMAT YOUR RESPONSE AS STRUCTURED JSON with the following format:
{
  "summary": "1-2 paragraph summary of the document's content and purpose",
  "keyInsights": ["First key insight from the document", "Second key insight from the document"],
  "metrics": {
    "sentiment": number between 0 and 1 representing sentiment score (higher is more positive),
    "confidence": number between 0.7 and 1 representing confidence in analysis,
    "topics": ["First main topic/theme", "Second main topic/theme"]
  },
  "recommendations": ["First specific recommendation based on the document", "Second specific recommendation based on the document"]
}

IMPORTANT: Return ONLY the JSON object as your response, nothing else. Do not include explanation text, formatting, or markdown.
`

const truncatedNote = "\n... (text truncated for size)"

// BuildPrompt embeds at most maxChars runes of text in the analysis prompt.
func BuildPrompt(text, fileName string, maxChars int) string {
	body := text
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		body = string([]rune(text)[:maxChars]) + truncatedNote
	}
	r := strings.NewReplacer("{{FILE_NAME}}", fileName, "{{TEXT}}", body)
	return r.Replace(promptTemplate)
}
