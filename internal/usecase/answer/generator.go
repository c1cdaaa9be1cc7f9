package answer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var (
	uuidPattern        = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	emptyBrackets      = regexp.MustCompile(`[\[(]\s*(?:[,;]\s*)*[\])]`)
	repeatedBlanks     = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeClosing = regexp.MustCompile(`\s+([.,;:!?])`)
	listNumbering      = regexp.MustCompile(`^\s*(?:[-*\x{2022}]|\d+[.)])\s+`)
	idMarker           = regexp.MustCompile(`(?i)\bids?\s*:`)
	conjunction        = regexp.MustCompile(`(?i)\b(?:e|and)\b`)
)

// Characters left over once every reference of a citation list is removed.
const citationPunct = " \t,;.:*_()[]-\u2013\u2014\u2022"

// minLeakedIDLength keeps short keys such as "n1" from being scrubbed out of
// ordinary prose.
const minLeakedIDLength = 6

// Generator produces the grounded answer for an assembled context.
type Generator struct {
	chat    ChatModel
	prompts config.Prompts
	policy  entity.CitationPolicy

	// sectionHeader matches the opening of a sources section, e.g. "**Fontes:**".
	sectionHeader *regexp.Regexp
	// bracketList matches a bracketed list, optionally introduced by a header
	// word, e.g. "Fonte [abc]" or "[id-1, id-2]".
	bracketList *regexp.Regexp
	// labelRefs match "Fonte N" in parentheses, brackets or bare. Group 1 is N.
	labelRefs []*regexp.Regexp
	// listRef matches one entry of a citation list. Group 1 is the rank.
	listRef *regexp.Regexp
}

func NewGenerator(chat ChatModel, prompts config.Prompts, policy entity.CitationPolicy) *Generator {
	g := &Generator{chat: chat, prompts: prompts, policy: policy}

	words := quoteAll(append([]string{prompts.SourceLabel}, prompts.CitationHeaders...))
	if len(words) > 0 {
		alt := strings.Join(words, "|")
		g.sectionHeader = regexp.MustCompile(`(?i)^[\s#*_>-]*(?:` + alt + `)\b[*_]*\s*:?[*_]*\s*`)
		g.bracketList = regexp.MustCompile(`(?i)(?:\b(?:` + alt + `)\b\s*:?\s*)?\[([^\]]*)\]`)
	}

	if label := strings.TrimSpace(prompts.SourceLabel); label != "" {
		// Case sensitive: "fonte 2" in prose is not a reference.
		core := regexp.QuoteMeta(label) + `\s+(\d+)\b(?:\s*\(id:\s*[^)]*\))?`
		g.labelRefs = []*regexp.Regexp{
			regexp.MustCompile(`\(\s*` + core + `\s*\)`),
			regexp.MustCompile(`\[\s*` + core + `\s*\]`),
			regexp.MustCompile(`\b` + core),
		}
	}

	names := quoteAll([]string{prompts.SourceLabel, prompts.NotePlaceholder})
	names = append(names, quoteAll(prompts.CitationHeaders)...)
	prefix := ""
	if len(names) > 0 {
		prefix = `(?:\b(?:` + strings.Join(names, "|") + `)\s*)?`
	}
	g.listRef = regexp.MustCompile(`(?i)` + prefix + `\b(\d+)\b(?:\s*\(id:\s*[^)]*\))?`)

	return g
}

func quoteAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, regexp.QuoteMeta(w))
		}
	}
	return out
}

// Generate asks the chat model for an answer grounded in block. An empty
// completion degrades to the configured fallback sentence.
func (g *Generator) Generate(ctx context.Context, question string, block entity.ContextBlock) (string, error) {
	text, err := g.chat.Complete(ctx, g.buildMessages(question, block))
	if err != nil {
		if !errors.Is(err, entity.ErrProvider) {
			err = fmt.Errorf("%w: %w", entity.ErrProvider, err)
		}
		return "", err
	}

	if g.policy == entity.CitationNone {
		cleaned := g.sanitize(text, block.SourceIDs)
		if cleaned != strings.TrimSpace(text) {
			ctxzap.Warn(ctx, "removed citations from generated answer",
				zap.Int("raw_runes", len([]rune(text))),
				zap.Int("clean_runes", len([]rune(cleaned))),
			)
		}
		text = cleaned
	}

	text = strings.TrimSpace(text)
	if text == "" {
		ctxzap.Warn(ctx, "empty generated answer, using fallback")
		return g.prompts.GenerationFallback, nil
	}
	return text, nil
}

func (g *Generator) buildMessages(question string, block entity.ContextBlock) []entity.ChatMessage {
	system, closing := g.prompts.SystemStrict, g.prompts.ClosingStrict
	if g.policy == entity.CitationAppendIDs {
		system, closing = g.prompts.SystemAppendIDs, g.prompts.ClosingAppendIDs
	}

	var user strings.Builder
	user.WriteString(g.prompts.QuestionHeader)
	user.WriteString("\n")
	user.WriteString(question)
	user.WriteString("\n\n")
	user.WriteString(g.prompts.SourcesHeader)
	user.WriteString("\n")
	user.WriteString(block.Text)
	user.WriteString("\n\n")
	user.WriteString(closing)

	return []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: system},
		{Role: entity.RoleUser, Content: user.String()},
	}
}

// sanitize enforces the no-citation policy on model output. A trailing
// sources section is cut only when everything after its header is a citation
// list. Inline references are removed only when they point at a retrieved
// rank, and leaked identifiers only at token boundaries.
func (g *Generator) sanitize(text string, ids []string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if g.sectionHeader != nil {
		for i, line := range lines {
			loc := g.sectionHeader.FindStringIndex(line)
			if loc == nil {
				continue
			}
			tail := append([]string{line[loc[1]:]}, lines[i+1:]...)
			if g.allCitations(tail, ids) {
				lines = lines[:i]
				break
			}
		}
	}
	out := strings.Join(lines, "\n")

	if g.bracketList != nil {
		out = replaceMatches(g.bracketList, out, func(groups []string) bool {
			return g.isCitationList(groups[1], ids)
		})
	}
	for _, re := range g.labelRefs {
		out = replaceMatches(re, out, func(groups []string) bool {
			return validRank(groups[1], len(ids))
		})
	}
	for _, id := range ids {
		if len([]rune(id)) >= minLeakedIDLength && !isNumeric(id) {
			out = removeToken(out, id)
		}
	}
	out = uuidPattern.ReplaceAllString(out, "")
	out = emptyBrackets.ReplaceAllString(out, "")

	cleaned := strings.Split(out, "\n")
	for i, line := range cleaned {
		line = repeatedBlanks.ReplaceAllString(line, " ")
		line = spaceBeforeClosing.ReplaceAllString(line, "$1")
		cleaned[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// allCitations reports whether every non-blank line is a citation list.
func (g *Generator) allCitations(lines []string, ids []string) bool {
	for _, line := range lines {
		line = listNumbering.ReplaceAllString(line, "")
		if strings.Trim(line, citationPunct) == "" {
			continue
		}
		if !g.isCitationList(line, ids) {
			return false
		}
	}
	return true
}

// isCitationList reports whether s holds nothing but references to the
// retrieved sources: their identifiers, UUIDs or "Fonte N" entries.
func (g *Generator) isCitationList(s string, ids []string) bool {
	if strings.Trim(s, citationPunct) == "" {
		return false
	}
	rest := uuidPattern.ReplaceAllString(s, " ")
	for _, id := range ids {
		rest = removeToken(rest, id)
	}
	rest = replaceMatches(g.listRef, rest, func(groups []string) bool {
		return validRank(groups[1], len(ids))
	})
	rest = idMarker.ReplaceAllString(rest, " ")
	rest = conjunction.ReplaceAllString(rest, " ")
	return strings.Trim(rest, citationPunct) == ""
}

// replaceMatches deletes the matches of re accepted by remove.
func replaceMatches(re *regexp.Regexp, s string, remove func(groups []string) bool) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		if remove(groups) {
			b.WriteString(s[last:loc[0]])
			last = loc[1]
		}
	}
	b.WriteString(s[last:])
	return b.String()
}

func validRank(s string, sources int) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1 && n <= sources
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// removeToken deletes occurrences of tok that are not part of a longer word.
func removeToken(s, tok string) string {
	if tok == "" {
		return s
	}
	var b strings.Builder
	last, from := 0, 0
	for {
		i := strings.Index(s[from:], tok)
		if i < 0 {
			break
		}
		start, end := from+i, from+i+len(tok)
		if tokenEdge(s, start, end) {
			b.WriteString(s[last:start])
			last, from = end, end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	b.WriteString(s[last:])
	return b.String()
}

func tokenEdge(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
