// ABOUTME: Prompt framing for journal reflections

package generation

const promptFraming = "You are a helpful journaling assistant. Reply to the user's journal entry " +
	"with insights, reflections, or encouragement. Keep your response supportive and thoughtful."

// BuildPrompt wraps a raw journal entry in the reflection instructions.
func BuildPrompt(entryText string) string {
	return promptFraming + "\n\nUser's journal entry: \"" + entryText + "\""
}
