package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"

	"bankmetrics/internal/domain"
)

// Placeholders substituted in the shared system prompt.
const (
	QuarterListPlaceholder     = "{{quarter_list}}"
	QuarterJSONKeysPlaceholder = "{{quarter_json_keys}}"
)

// documentTextSeparator joins the user prompt and the serialized tables.
const documentTextSeparator = "\n\nDocument Text:\n"

// Loader reads prompt templates from the workspace.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a Loader.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load returns the template at path. A missing file wraps domain.ErrPromptNotFound.
func (l *Loader) Load(path string) (string, error) {
	b, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrPromptNotFound, path)
		}
		return "", fmt.Errorf("reading prompt %s: %w", path, err)
	}
	return string(b), nil
}

// QuarterList renders the window as "Q12024, Q22024, ...".
func QuarterList(window []domain.Quarter) string {
	labels := make([]string, len(window))
	for i, q := range window {
		labels[i] = q.String()
	}
	return strings.Join(labels, ", ")
}

// QuarterJSONKeys renders the window as `"Q12024": "", "Q22024": "", ...`.
func QuarterJSONKeys(window []domain.Quarter) string {
	keys := make([]string, len(window))
	for i, q := range window {
		keys[i] = fmt.Sprintf("%q: \"\"", q.String())
	}
	return strings.Join(keys, ", ")
}

// RenderSystemPrompt substitutes the quarter placeholders in template.
func RenderSystemPrompt(template string, window []domain.Quarter) string {
	r := strings.NewReplacer(
		QuarterListPlaceholder, QuarterList(window),
		QuarterJSONKeysPlaceholder, QuarterJSONKeys(window),
	)
	return r.Replace(template)
}

// BuildUserMessage appends the serialized document tables to the user prompt.
func BuildUserMessage(userPrompt, documentText string) string {
	return userPrompt + documentTextSeparator + documentText
}
