package synthesis

import (
	"fmt"
	"strings"
)

const (
	maxFallbackInsights  = 3
	maxFallbackQuestions = 4
	minQuoteLength       = 12
)

// GenerateFallbackArtifacts produces artifacts from a transcript without an
// LLM. It is deterministic and runs whenever synthesis is skipped or every
// model in the fallback chain has failed.
func GenerateFallbackArtifacts(transcript string, sctx *Context) []Artifact {
	text := collapseWhitespace(transcript)
	if text == "" {
		return nil
	}

	units := splitSentences(text)
	var artifacts []Artifact

	insights := 0
	for _, unit := range units {
		if insights >= maxFallbackInsights {
			break
		}
		if strings.HasSuffix(unit, "?") {
			continue
		}
		insights++
		artifacts = append(artifacts, Artifact{
			Kind:    KindInsight,
			Title:   fmt.Sprintf("Session insight %d", insights),
			Content: unit,
		})
	}

	questions := 0
	for _, unit := range units {
		if questions >= maxFallbackQuestions {
			break
		}
		if !strings.HasSuffix(unit, "?") {
			continue
		}
		questions++
		artifacts = append(artifacts, Artifact{
			Kind:    KindOpenQuestion,
			Title:   fmt.Sprintf("Open question %d", questions),
			Content: unit,
		})
	}

	for i, quote := range extractQuotes(text) {
		artifacts = append(artifacts, Artifact{
			Kind:    KindQuote,
			Title:   fmt.Sprintf("Marked passage %d", i+1),
			Content: quote,
		})
	}

	artifacts = append(artifacts, followUpArtifact(sctx))

	if sctx != nil && sctx.Book != nil && sctx.Book.Title != "" && sctx.Book.Author != "" {
		artifacts = append(artifacts, Artifact{
			Kind:    KindContextExpansion,
			Title:   fmt.Sprintf("Beyond %s", sctx.Book.Title),
			Content: fmt.Sprintf("Look into other work by %s and the themes they keep returning to.", sctx.Book.Author),
		})
	}

	return artifacts
}

func followUpArtifact(sctx *Context) Artifact {
	if sctx != nil && sctx.Book != nil && sctx.Book.Title != "" {
		return Artifact{
			Kind:    KindFollowUpQuestion,
			Title:   "Follow-up question",
			Content: fmt.Sprintf("What passage from %s do you want to revisit in your next reading block?", sctx.Book.Title),
		}
	}
	return Artifact{
		Kind:    KindFollowUpQuestion,
		Title:   "Follow-up question",
		Content: "What do you want to revisit in your next reading block?",
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitSentences breaks collapsed text into sentence-like units, each
// keeping its terminal punctuation. A trailing run without terminal
// punctuation still counts as a unit.
func splitSentences(text string) []string {
	var units []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if unit := strings.TrimSpace(b.String()); unit != "" {
				units = append(units, unit)
			}
			b.Reset()
		}
	}
	if unit := strings.TrimSpace(b.String()); unit != "" {
		units = append(units, unit)
	}
	return units
}

// extractQuotes returns the spans between straight double quotes, in order,
// dropping candidates shorter than minQuoteLength after trimming. Spans are
// kept verbatim minus the quote marks.
func extractQuotes(text string) []string {
	parts := strings.Split(text, `"`)
	var quotes []string
	// An odd index is inside quotes; the final part never has a closing
	// quote, so an odd last index is an unterminated span and is skipped.
	for i := 1; i < len(parts)-1; i += 2 {
		if len(strings.TrimSpace(parts[i])) < minQuoteLength {
			continue
		}
		quotes = append(quotes, parts[i])
	}
	return quotes
}
