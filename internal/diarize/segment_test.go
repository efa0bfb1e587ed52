package diarize

import (
	"reflect"
	"strings"
	"testing"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"single without terminal", "hola", []string{"hola"}},
		{"spanish questions", "Hola, ¿cómo estás? Me siento ansioso. Entiendo, cuéntame más.",
			[]string{"Hola, ¿cómo estás?", "Me siento ansioso.", "Entiendo, cuéntame más."}},
		{"ellipsis kept together", "Bueno... no sé. Sí!", []string{"Bueno...", "no sé.", "Sí!"}},
		{"decimal not split", "Dormí 7.5 horas. Bien.", []string{"Dormí 7.5 horas.", "Bien."}},
		{"newline boundary", "Uno.\nDos?\n\nTres!", []string{"Uno.", "Dos?", "Tres!"}},
		{"mixed terminal run", "¿En serio?! Sí.", []string{"¿En serio?!", "Sí."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSegment_Example(t *testing.T) {
	chunks := Segment("Hola, ¿cómo estás? Me siento ansioso. Entiendo, cuéntame más.", 2)
	want := []string{"Hola, ¿cómo estás? Me siento ansioso.", "Entiendo, cuéntame más."}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("Segment() = %#v, want %#v", chunks, want)
	}
}

func TestSegment_Empty(t *testing.T) {
	if got := Segment("", 15); len(got) != 0 {
		t.Fatalf("Segment(\"\") = %#v, want no chunks", got)
	}
	if got := Segment("   ", 15); len(got) != 0 {
		t.Fatalf("Segment(blank) = %#v, want no chunks", got)
	}
}

func TestSegment_DefaultLimit(t *testing.T) {
	text := strings.Repeat("Frase corta. ", 31)
	if got := len(Segment(text, 0)); got != 3 {
		t.Fatalf("chunks = %d, want 3 with default limit", got)
	}
}

func TestSegment_Properties(t *testing.T) {
	texts := []string{
		"Uno. Dos. Tres. Cuatro. Cinco. Seis. Siete.",
		"Sin puntuación final",
		"¿Qué? ¡No! Vale. Hm... ya veo. Gracias.",
		strings.Repeat("Me cuesta dormir. ", 40),
	}
	for _, text := range texts {
		for max := 1; max <= 6; max++ {
			sentences := Sentences(text)
			chunks := Segment(text, max)

			wantCount := (len(sentences) + max - 1) / max
			if len(chunks) != wantCount {
				t.Errorf("max=%d: chunk count = %d, want %d", max, len(chunks), wantCount)
			}
			if strings.Join(chunks, " ") != strings.Join(sentences, " ") {
				t.Errorf("max=%d: chunks do not reproduce sentence sequence", max)
			}
			for _, c := range chunks {
				if n := len(Sentences(c)); n > max {
					t.Errorf("max=%d: chunk has %d sentences", max, n)
				}
			}
		}
	}
}
