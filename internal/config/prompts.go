package config

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompts is the wording for one answer language.
type Prompts struct {
	SourceLabel        string   `yaml:"source_label"`
	NotePlaceholder    string   `yaml:"note_placeholder"`
	InsufficientAnswer string   `yaml:"insufficient_answer"`
	GenerationFallback string   `yaml:"generation_fallback"`
	SystemStrict       string   `yaml:"system_strict"`
	SystemAppendIDs    string   `yaml:"system_append_ids"`
	QuestionHeader     string   `yaml:"question_header"`
	SourcesHeader      string   `yaml:"sources_header"`
	ClosingStrict      string   `yaml:"closing_strict"`
	ClosingAppendIDs   string   `yaml:"closing_append_ids"`
	CitationHeaders    []string `yaml:"citation_headers"`

	BotHelp           string `yaml:"bot_help"`
	BotError          string `yaml:"bot_error"`
	BotRateLimited    string `yaml:"bot_rate_limited"`
	BotNoDuplicate    string `yaml:"bot_no_duplicate"`
	BotDuplicateFound string `yaml:"bot_duplicate_found"`
	BotSourcesHeader  string `yaml:"bot_sources_header"`
	BotEmptyQuestion  string `yaml:"bot_empty_question"`
}

type promptCatalog struct {
	Languages map[string]Prompts `yaml:"languages"`
}

// LoadPrompts returns the wording for language. An override file, when given,
// may define new languages or replace individual fields of the built-in ones.
func LoadPrompts(path, language string) (Prompts, error) {
	builtin, err := parseCatalog(defaultPromptsYAML)
	if err != nil {
		return Prompts{}, fmt.Errorf("parse built-in prompts: %w", err)
	}

	prompts := builtin.Languages[language]

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Prompts{}, fmt.Errorf("read prompts file: %w", err)
		}
		override, err := parseCatalog(data)
		if err != nil {
			return Prompts{}, fmt.Errorf("parse prompts file %s: %w", path, err)
		}
		if custom, ok := override.Languages[language]; ok {
			prompts = mergePrompts(prompts, custom)
		}
	}

	if missing := missingFields(prompts); len(missing) > 0 {
		return Prompts{}, fmt.Errorf("prompts for language %q are incomplete, missing: %v", language, missing)
	}

	return prompts, nil
}

func parseCatalog(data []byte) (*promptCatalog, error) {
	var catalog promptCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// mergePrompts overlays the non-empty fields of custom on base.
func mergePrompts(base, custom Prompts) Prompts {
	b := reflect.ValueOf(&base).Elem()
	c := reflect.ValueOf(custom)
	for i := 0; i < c.NumField(); i++ {
		if !c.Field(i).IsZero() {
			b.Field(i).Set(c.Field(i))
		}
	}
	return base
}

func missingFields(p Prompts) []string {
	var missing []string
	v := reflect.ValueOf(p)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).IsZero() {
			missing = append(missing, t.Field(i).Tag.Get("yaml"))
		}
	}
	return missing
}
