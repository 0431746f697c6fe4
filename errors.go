package thumbkit

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Error taxonomy. Every failure surfaced by the pipeline matches one of these
// (or one of the validation errors) with errors.Is.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidImageFormat = errors.New("unsupported image format")
	ErrSystemPromptRead   = errors.New("system prompt could not be read")
	ErrMissingCredentials = errors.New("missing API credentials")
	ErrNoImageReturned    = errors.New("model returned no image data")
	ErrUpstreamTransport  = errors.New("upstream request failed")
	ErrInvalidOutputDir   = errors.New("output path exists and is not a directory")
	ErrInvalidOption      = errors.New("invalid option")
)

// ErrStorageNotConfigured is returned when a pipeline runs without a storage
// backend to write the generated image to.
var ErrStorageNotConfigured = errors.New("storage not configured")

// ImagePathError reports a problem with an input image path.
type ImagePathError struct {
	// Label names the argument the path came from, e.g. "--ref (image #2)".
	Label string
	Path  string
	// Ext is the lowercased extension, set for format errors.
	Ext    string
	Detail string
	Err    error
}

func (e *ImagePathError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Label != "" {
		return fmt.Sprintf("%s: %s: %s", e.Label, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", msg, e.Path)
}

func (e *ImagePathError) Unwrap() error {
	return e.Err
}

// SystemPromptError is returned when a user-supplied system prompt file
// cannot be used.
type SystemPromptError struct {
	Path string
	Err  error
}

func (e *SystemPromptError) Error() string {
	return fmt.Sprintf("%s from %s: %v", ErrSystemPromptRead, e.Path, e.Err)
}

func (e *SystemPromptError) Unwrap() []error {
	return []error{ErrSystemPromptRead, e.Err}
}

// NoImageError is returned when the model answered without any image data.
type NoImageError struct {
	Model        string
	FinishReason string
	BlockReason  string
	// Text is whatever prose the model returned instead of an image.
	Text string
}

func (e *NoImageError) Error() string {
	var details []string
	if e.Model != "" {
		details = append(details, "model "+e.Model)
	}
	if e.BlockReason != "" {
		details = append(details, "prompt blocked: "+e.BlockReason)
	}
	if e.FinishReason != "" {
		details = append(details, "finish reason: "+e.FinishReason)
	}
	if e.Text != "" {
		details = append(details, fmt.Sprintf("model said: %q", truncate(e.Text, 200)))
	}
	if len(details) == 0 {
		return ErrNoImageReturned.Error()
	}
	return ErrNoImageReturned.Error() + " (" + strings.Join(details, "; ") + ")"
}

func (e *NoImageError) Unwrap() error {
	return ErrNoImageReturned
}

// Remediation lists likely causes and next steps.
func (e *NoImageError) Remediation() string {
	return noImageHelp
}

// UpstreamError wraps a transport or API failure from the remote model,
// preserving the upstream message.
type UpstreamError struct {
	Model      string
	StatusCode int
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		status := strings.TrimSpace(fmt.Sprintf("%d %s", e.StatusCode, e.Status))
		return fmt.Sprintf("request to %s failed (HTTP %s): %v", e.Model, status, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamTransport, e.Err}
}

// OptionError reports a flag or argument value outside its allowed set.
type OptionError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Option, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *OptionError) Unwrap() error {
	return ErrInvalidOption
}

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

const missingCredentialsHelp = `SOLUTION: set your Gemini API key using one of these options:
  1. Add GEMINI_API_KEY=your-key to ~/.claude/.env or to a .env file in the project
  2. export GEMINI_API_KEY=your-key
  3. export GOOGLE_API_KEY=your-key
Get a key at https://ai.google.dev/`

const noImageHelp = `POSSIBLE CAUSES:
  - the prompt or reference images tripped the model's safety filters
  - the API request was malformed or the model rejected the configuration
  - the reference images are incompatible with the request or corrupted

SOLUTIONS:
  1. Rephrase the prompt with less ambiguous wording
  2. Retry without reference images to isolate the problem
  3. Check that reference images open correctly and are PNG, JPEG or WebP
  4. Verify the API key and quota, then try again later`

// Remediation returns guidance for fixing err, or "" when there is none.
func Remediation(err error) string {
	if err == nil {
		return ""
	}

	var (
		rlErr       *RateLimitError
		upErr       *UpstreamError
		optErr      *OptionError
		promptErr   *SystemPromptError
		pathErr     *ImagePathError
		remediation interface{ Remediation() string }
	)

	switch {
	case errors.Is(err, ErrMissingCredentials):
		return missingCredentialsHelp
	case errors.Is(err, ErrEmptyPrompt):
		return "SOLUTION: pass a non-empty prompt describing the image, e.g. --prompt \"Bold title text over a neon city skyline\"."
	case errors.As(err, &rlErr):
		return fmt.Sprintf("SOLUTION: wait %v before retrying, or switch models with --model.", rlErr.RetryAfter.Round(time.Second))
	case errors.As(err, &remediation):
		return remediation.Remediation()
	case errors.As(err, &upErr):
		return upstreamHelp(upErr)
	case errors.Is(err, ErrInvalidImageFormat):
		ext := ""
		if errors.As(err, &pathErr) {
			ext = pathErr.Ext
		}
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Sprintf("SOLUTION: the extension %s is not supported. Convert the image to one of %s and pass the new path.",
			ext, strings.Join(AllowedExtensions, ", "))
	case errors.Is(err, ErrFileNotFound):
		return "SOLUTION: check that the path exists and names a file, not a directory. Absolute paths avoid working-directory mistakes."
	case errors.Is(err, fs.ErrPermission):
		return "SOLUTION: check that the file is readable (and the output directory writable) by the current user."
	case errors.Is(err, ErrImageTooLarge):
		return fmt.Sprintf("SOLUTION: input images must be at most %d MiB each. Downscale or recompress the image first.", MaxImageSize>>20)
	case errors.Is(err, ErrTooManyImages):
		return fmt.Sprintf("SOLUTION: pass at most %d images in total (base plus references).", MaxInputImages)
	case errors.As(err, &promptErr):
		return "SOLUTION: point --system-prompt at an existing UTF-8 text file, or omit it to use the built-in guidelines."
	case errors.Is(err, ErrInvalidOutputDir):
		return "SOLUTION: choose an --out-dir that is a directory, or a path that does not exist yet."
	case errors.As(err, &optErr):
		return fmt.Sprintf("SOLUTION: use one of: %s.", strings.Join(optErr.Allowed, ", "))
	}
	return ""
}

func upstreamHelp(e *UpstreamError) string {
	switch {
	case e.StatusCode == 400:
		return "SOLUTION: the API rejected the request. Check the aspect ratio (e.g. 16:9), the model name and the reference images."
	case e.StatusCode == 401 || e.StatusCode == 403:
		return "SOLUTION: the API key was rejected. Verify GEMINI_API_KEY and that the Generative Language API is enabled for it."
	case e.StatusCode == 404:
		return "SOLUTION: the model was not found. Try --model flash or --model pro."
	case e.StatusCode >= 500:
		return "SOLUTION: the model service failed. Try again in a few moments."
	}
	return "SOLUTION: check your network connection and API key, then try again."
}

// Describe formats err for display to a user or an agent, including
// remediation guidance when available.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := "ERROR: " + err.Error()
	if rem := Remediation(err); rem != "" {
		msg += "\n\n" + rem
	}
	return msg
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
