package answer

import (
	"fmt"
	"strings"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
)

const (
	fragmentSeparator = "\n\n---\n\n"
	ellipsis          = "…"
)

// Assembler turns ranked matches into the prompt context and the caller
// facing sources. Matches are neither reordered nor deduplicated.
type Assembler struct {
	cfg         config.ContextConfig
	sourceLabel string
	placeholder string
	policy      entity.CitationPolicy
}

func NewAssembler(cfg config.ContextConfig, prompts config.Prompts, policy entity.CitationPolicy) *Assembler {
	return &Assembler{
		cfg:         cfg,
		sourceLabel: prompts.SourceLabel,
		placeholder: prompts.NotePlaceholder,
		policy:      policy,
	}
}

func (a *Assembler) Assemble(matches []entity.Match) (entity.ContextBlock, []entity.Source) {
	sources := make([]entity.Source, 0, len(matches))
	fragments := make([]string, 0, len(matches))
	ids := make([]string, 0, len(matches))

	for i, m := range matches {
		rank := i + 1
		normalized := NormalizeText(m.Content)

		sources = append(sources, entity.Source{
			Rank:       rank,
			ID:         m.ID,
			Similarity: m.Similarity,
			Title:      a.title(normalized, rank),
			Preview:    Truncate(normalized, a.cfg.PreviewLength),
			Content:    m.Content,
		})
		fragments = append(fragments, a.label(rank, m.ID)+"\n"+Truncate(normalized, a.cfg.FragmentLength))
		ids = append(ids, m.ID)
	}

	return entity.ContextBlock{
		Text:      strings.Join(fragments, fragmentSeparator),
		SourceIDs: ids,
	}, sources
}

// label names a fragment. Identifiers reach the model only when the
// deployment asks for them to be cited.
func (a *Assembler) label(rank int, id string) string {
	if a.policy == entity.CitationAppendIDs && id != "" {
		return fmt.Sprintf("%s %d (id: %s):", a.sourceLabel, rank, id)
	}
	return fmt.Sprintf("%s %d:", a.sourceLabel, rank)
}

func (a *Assembler) title(normalized string, rank int) string {
	if normalized == "" {
		return fmt.Sprintf("%s %d", a.placeholder, rank)
	}
	title := Truncate(normalized, a.cfg.TitleLength)
	if len(title) < len(normalized) {
		title += ellipsis
	}
	return title
}

// NormalizeText collapses whitespace runs to a single space and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
