package answer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
)

func newTestAssembler(t *testing.T, policy entity.CitationPolicy) *Assembler {
	return NewAssembler(config.ContextConfig{TitleLength: 52, PreviewLength: 180, FragmentLength: 1200}, testPrompts(t), policy)
}

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"  a\n\n b\t c  ": "a b c",
		"":                "",
		" \n\t ":          "",
		"single":          "single",
	}
	for in, want := range tests {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("ação rápida", 4); got != "ação" {
		t.Errorf("Truncate counts runes, got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestAssemble_SourcesFollowRetrievalOrder(t *testing.T) {
	a := newTestAssembler(t, entity.CitationNone)
	matches := []entity.Match{
		{ID: "id-1", Similarity: 0.91, Content: "Deadline is March 3rd for project X"},
		{ID: "id-2", Similarity: 0.77, Content: "Project X kickoff was in January"},
		{ID: "id-3", Similarity: 0.5, Content: "Project X kickoff was in January"},
	}

	block, sources := a.Assemble(matches)

	if len(sources) != len(matches) {
		t.Fatalf("len(sources) = %d, want %d", len(sources), len(matches))
	}
	for i, s := range sources {
		if s.Rank != i+1 {
			t.Errorf("sources[%d].Rank = %d", i, s.Rank)
		}
		if s.ID != matches[i].ID || s.Similarity != matches[i].Similarity {
			t.Errorf("sources[%d] = %+v, does not mirror match", i, s)
		}
	}

	fragments := strings.Split(block.Text, "\n\n---\n\n")
	if len(fragments) != len(matches) {
		t.Fatalf("fragments = %d, want %d", len(fragments), len(matches))
	}
	for i, f := range fragments {
		wantPrefix := fmt.Sprintf("Fonte %d:\n", i+1)
		if !strings.HasPrefix(f, wantPrefix) {
			t.Errorf("fragment %d = %q, want prefix %q", i, f, wantPrefix)
		}
	}
	for _, m := range matches {
		if strings.Contains(block.Text, m.ID) {
			t.Errorf("context leaks id %s under strict policy", m.ID)
		}
	}
	if len(block.SourceIDs) != 3 || block.SourceIDs[0] != "id-1" {
		t.Errorf("SourceIDs = %v", block.SourceIDs)
	}
}

func TestAssemble_TitleAndPreview(t *testing.T) {
	a := newTestAssembler(t, entity.CitationNone)
	exact := strings.Repeat("a", 52)
	long := strings.Repeat("b", 60) + "\n\n  " + strings.Repeat("c", 200)

	_, sources := a.Assemble([]entity.Match{
		{ID: "1", Content: "  curta \n nota "},
		{ID: "2", Content: exact},
		{ID: "3", Content: long},
		{ID: "4", Content: " \n\t "},
	})

	if sources[0].Title != "curta nota" || sources[0].Preview != "curta nota" {
		t.Errorf("short note = %+v", sources[0])
	}
	if sources[1].Title != exact {
		t.Errorf("title of exactly 52 runes must not get an ellipsis, got %q", sources[1].Title)
	}
	if want := strings.Repeat("b", 52) + "…"; sources[2].Title != want {
		t.Errorf("long title = %q, want %q", sources[2].Title, want)
	}
	if n := len([]rune(sources[2].Preview)); n != 180 {
		t.Errorf("preview runes = %d, want 180", n)
	}
	if strings.Contains(sources[2].Preview, "\n") || strings.Contains(sources[2].Preview, "  ") {
		t.Errorf("preview not normalized: %q", sources[2].Preview)
	}
	if sources[3].Title != "Nota 4" || sources[3].Preview != "" {
		t.Errorf("empty note = %+v", sources[3])
	}
	if sources[2].Content != long {
		t.Error("raw content must be kept for prompting")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := newTestAssembler(t, entity.CitationNone)
	matches := []entity.Match{{ID: "x", Content: "Uma nota  com\tespaços"}}
	b1, s1 := a.Assemble(matches)
	b2, s2 := a.Assemble(matches)
	if b1.Text != b2.Text || s1[0] != s2[0] {
		t.Error("assembly is not deterministic")
	}
}

func TestAssemble_FragmentCap(t *testing.T) {
	a := newTestAssembler(t, entity.CitationNone)
	block, _ := a.Assemble([]entity.Match{{ID: "1", Content: strings.Repeat("é", 1500)}})
	body := strings.TrimPrefix(block.Text, "Fonte 1:\n")
	if n := len([]rune(body)); n != 1200 {
		t.Errorf("fragment runes = %d, want 1200", n)
	}
}

func TestAssemble_AppendIDsLabels(t *testing.T) {
	a := newTestAssembler(t, entity.CitationAppendIDs)
	block, _ := a.Assemble([]entity.Match{{ID: "note-42", Content: "texto"}})
	if !strings.HasPrefix(block.Text, "Fonte 1 (id: note-42):\n") {
		t.Errorf("block = %q", block.Text)
	}
}

func TestAssemble_Empty(t *testing.T) {
	a := newTestAssembler(t, entity.CitationNone)
	block, sources := a.Assemble(nil)
	if block.Text != "" || len(sources) != 0 {
		t.Errorf("got %q, %v", block.Text, sources)
	}
}
