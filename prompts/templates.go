package prompts

// Message is a single entry in a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TaskTypeGeneral is the fallback task type for unknown values.
const TaskTypeGeneral = "general"

// systemPrompts maps task types to their system prompt.
var systemPrompts = map[string]string{
	"general":     "You are a helpful assistant that provides clear and concise answers.",
	"technical":   "You are a technical expert that provides detailed, accurate technical information.",
	"creative":    "You are a creative assistant that helps with brainstorming and creative tasks.",
	"analytical":  "You are an analytical assistant that provides data-driven insights and analysis.",
	"educational": "You are an educational assistant that explains concepts clearly and thoroughly.",
	"code":        "You are an expert programmer that provides clean, efficient code solutions with explanations.",
}

// taskTypeOrder keeps TaskTypes deterministic for the API listing.
var taskTypeOrder = []string{"general", "technical", "creative", "analytical", "educational", "code"}

// SystemPrompt returns the system prompt for a task type, falling back to
// the general prompt for unknown values.
func SystemPrompt(taskType string) string {
	if prompt, ok := systemPrompts[taskType]; ok {
		return prompt
	}
	return systemPrompts[TaskTypeGeneral]
}

// BuildConversation assembles the message sequence for a model call:
// system prompt, optional extra context, then the user question.
func BuildConversation(question, taskType, context string) []Message {
	messages := []Message{
		{Role: "system", Content: SystemPrompt(taskType)},
	}
	if context != "" {
		messages = append(messages, Message{Role: "system", Content: "Additional context: " + context})
	}
	messages = append(messages, Message{Role: "user", Content: question})
	return messages
}

// TaskTypes lists the recognized task types.
func TaskTypes() []string {
	return append([]string(nil), taskTypeOrder...)
}
