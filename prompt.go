package thumbkit

import (
	_ "embed"
	"errors"
	"os"
	"strings"
	"unicode/utf8"
)

//go:embed system_prompt.md
var defaultSystemPrompt string

// DefaultSystemPrompt returns the built-in thumbnail design guidelines.
func DefaultSystemPrompt() string {
	return defaultSystemPrompt
}

// ResolveSystemText returns the guideline text to prepend to the prompt.
// An empty path selects the built-in guidelines. A file that is empty or
// whitespace-only also falls back to them.
func ResolveSystemText(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &SystemPromptError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &SystemPromptError{Path: path, Err: errors.New("file is not valid UTF-8")}
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return defaultSystemPrompt, nil
	}
	return text, nil
}

// Composition is the ordered pair of guideline text and user prompt. Both are
// kept verbatim.
type Composition struct {
	System string
	Prompt string
}

// Compose pairs systemText with prompt.
func Compose(systemText, prompt string) Composition {
	return Composition{System: systemText, Prompt: prompt}
}

// Text joins the guidelines and the prompt with a blank line, guidelines first.
func (c Composition) Text() string {
	if c.System == "" {
		return c.Prompt
	}
	return c.System + "\n\n" + c.Prompt
}
