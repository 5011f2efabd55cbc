package llm

import (
	"fmt"
	"strings"
)

const titleSystemPrompt = "You are a YouTube SEO and engagement expert who helps creators write better video titles. Always respond with valid JSON only."

func buildTitlePrompt(channelName string, titles []string) string {
	var numbered strings.Builder
	for i, title := range titles {
		fmt.Fprintf(&numbered, "%d. %q\n", i+1, title)
	}

	return fmt.Sprintf(`You are a YouTube title optimization expert. Below are %d video titles from the channel %q.
For each video title, provide:
1. An improved version that is more engaging, SEO-friendly, and likely to get more clicks.
2. A brief rationale (1-2 sentences) explaining why the improved title is better.

Guidelines:
- Keep the core topic and authenticity
- Use action verbs, numbers, and specific value propositions
- Make it curiosity-inducing without being clickbait
- Optimize for searchability and clarity

Video titles:
%s
Respond in JSON format:
{
 "titles": [
  {
    "original": "string",
    "improved": "string",
    "rationale": "string"
  }
 ]
}`, len(titles), channelName, numbered.String())
}
