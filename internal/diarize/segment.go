// Package diarize splits transcripts into model-sized chunks and recovers
// speaker-attributed turns from unreliable model responses.
package diarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkSentences is used when a caller passes a non-positive limit
const DefaultChunkSentences = 15

// Sentences splits text after '.', '!' or '?' when followed by whitespace.
// The terminal punctuation stays with its sentence; runs like "..." or "?!"
// are kept together.
func Sentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(text) {
			break
		}
		nr, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(nr) {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Segment groups consecutive sentences into chunks of at most maxUnitsPerChunk
// sentences joined by single spaces. Empty input yields no chunks.
func Segment(text string, maxUnitsPerChunk int) []string {
	if maxUnitsPerChunk <= 0 {
		maxUnitsPerChunk = DefaultChunkSentences
	}
	sentences := Sentences(text)
	chunks := make([]string, 0, (len(sentences)+maxUnitsPerChunk-1)/maxUnitsPerChunk)
	for i := 0; i < len(sentences); i += maxUnitsPerChunk {
		end := i + maxUnitsPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
	}
	return chunks
}
