package thumbkit

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func TestComposition_Text(t *testing.T) {
	got := Compose("Be concise.", "A red fox").Text()
	if want := "Be concise.\n\nA red fox"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestComposition_Verbatim(t *testing.T) {
	system := "Line one\n  {{not a template}}\n"
	prompt := "  %s $HOME  "

	c := Compose(system, prompt)
	if c.System != system || c.Prompt != prompt {
		t.Errorf("Compose altered its inputs: %+v", c)
	}
	if got := c.Text(); got != system+"\n\n"+prompt {
		t.Errorf("Text() = %q", got)
	}
}

func TestResolveSystemText_Default(t *testing.T) {
	text, err := ResolveSystemText("")
	if err != nil {
		t.Fatalf("ResolveSystemText() error = %v", err)
	}
	if text != DefaultSystemPrompt() || strings.TrimSpace(text) == "" {
		t.Error("expected the built-in guidelines")
	}
}

func TestResolveSystemText_File(t *testing.T) {
	dir := t.TempDir()
	content := "Use neon colours.\nNo text."
	path := writeFile(t, dir, "style.md", []byte(content))

	text, err := ResolveSystemText(path)
	if err != nil {
		t.Fatalf("ResolveSystemText() error = %v", err)
	}
	if text != content {
		t.Errorf("ResolveSystemText() = %q, want %q", text, content)
	}

	blank := writeFile(t, dir, "blank.md", []byte("  \n\t"))
	text, err = ResolveSystemText(blank)
	if err != nil {
		t.Fatalf("ResolveSystemText(blank) error = %v", err)
	}
	if text != DefaultSystemPrompt() {
		t.Error("blank file should fall back to the built-in guidelines")
	}
}

func TestResolveSystemText_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		path := filepath.Join(dir, "missing.md")
		_, err := ResolveSystemText(path)
		if !errors.Is(err, ErrSystemPromptRead) {
			t.Fatalf("error = %v, want ErrSystemPromptRead", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error %v should wrap fs.ErrNotExist", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error %q does not carry the path", err)
		}
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		path := writeFile(t, dir, "latin1.txt", []byte{'c', 'a', 'f', 0xe9, 0xff})
		_, err := ResolveSystemText(path)
		if !errors.Is(err, ErrSystemPromptRead) {
			t.Fatalf("error = %v, want ErrSystemPromptRead", err)
		}
		if !strings.Contains(err.Error(), "UTF-8") {
			t.Errorf("error %q should mention UTF-8", err)
		}
	})
}
