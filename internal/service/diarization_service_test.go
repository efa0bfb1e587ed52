package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"rolecoach/internal/apperr"
	"rolecoach/internal/model"
)

const exampleTranscript = "Hola, ¿cómo estás? Me siento ansioso. Entiendo, cuéntame más."

// respondByChunk returns the canned answer whose key appears in the prompt
func respondByChunk(answers map[string]string) func(InvokeRequest) (string, error) {
	return func(req InvokeRequest) (string, error) {
		for chunk, answer := range answers {
			if strings.Contains(req.UserPrompt, chunk) {
				return answer, nil
			}
		}
		return "", apperr.ModelUnavailable(errBoom)
	}
}

func TestDiarize_EndToEndExample(t *testing.T) {
	inv := &fakeInvoker{respond: respondByChunk(map[string]string{
		"Hola, ¿cómo estás? Me siento ansioso.": `[{"hablante":"Paciente","texto":"Hola, ¿cómo estás?"},{"hablante":"Paciente","texto":"Me siento ansioso."}]`,
		"Entiendo, cuéntame más.":               `[{"hablante":"Terapeuta","texto":"Entiendo, cuéntame más."}]`,
	})}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{Model: "m", ChunkSentences: 2})

	got, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: exampleTranscript})
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	want := []model.DiarizedTurn{
		{Speaker: model.SpeakerPatient, Text: "Hola, ¿cómo estás?"},
		{Speaker: model.SpeakerPatient, Text: "Me siento ansioso."},
		{Speaker: model.SpeakerTherapist, Text: "Entiendo, cuéntame más."},
	}
	if !reflect.DeepEqual(got.Turns, want) {
		t.Errorf("turns = %+v, want %+v", got.Turns, want)
	}
	if got.Chunks != 2 || len(got.FailedChunks) != 0 {
		t.Errorf("chunks = %d, failed = %v", got.Chunks, got.FailedChunks)
	}
	if inv.callCount() != 2 {
		t.Errorf("model calls = %d, want 2", inv.callCount())
	}
}

func TestDiarize_FailedChunksAreSkipped(t *testing.T) {
	text := "Uno. Dos. Tres."
	inv := &fakeInvoker{respond: respondByChunk(map[string]string{
		"Uno.":  `[{"hablante":"Terapeuta","texto":"Uno."}]`,
		"Dos.":  "Lo siento, no puedo procesar esto.",
		"Tres.": `prosa [{"hablante":"Paciente","texto":"Tres."}, {"hablante":"Paciente","texto":"cor`,
	})}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{ChunkSentences: 1})

	got, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: text})
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if len(got.Turns) != 2 || got.Turns[0].Text != "Uno." || got.Turns[1].Text != "Tres." {
		t.Errorf("turns = %+v", got.Turns)
	}
	if !reflect.DeepEqual(got.FailedChunks, []int{1}) {
		t.Errorf("failedChunks = %v, want [1]", got.FailedChunks)
	}
}

func TestDiarize_ModelErrorOnOneChunk(t *testing.T) {
	inv := &fakeInvoker{respond: respondByChunk(map[string]string{
		"Uno.": `[{"hablante":"Terapeuta","texto":"Uno."}]`,
	})}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{ChunkSentences: 1})

	got, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: "Uno. Dos."})
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if len(got.Turns) != 1 || !reflect.DeepEqual(got.FailedChunks, []int{1}) {
		t.Errorf("result = %+v", got)
	}
}

func TestDiarize_NoTurnsAnywhere(t *testing.T) {
	inv := &fakeInvoker{respond: func(InvokeRequest) (string, error) { return "nada útil", nil }}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{})

	_, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: exampleTranscript})
	if !errors.Is(err, apperr.ErrMalformedModelOutput) {
		t.Fatalf("error = %v, want malformed model output", err)
	}
	if apperr.HTTPStatus(err) != 500 {
		t.Errorf("status = %d, want 500", apperr.HTTPStatus(err))
	}
}

func TestDiarize_EmptyText(t *testing.T) {
	inv := &fakeInvoker{}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{})

	for _, text := range []string{"", "   \n\t"} {
		_, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: text})
		if !errors.Is(err, apperr.ErrClientInput) || apperr.HTTPStatus(err) != 400 {
			t.Errorf("Diarize(%q) error = %v, want client input", text, err)
		}
	}
	if inv.callCount() != 0 {
		t.Error("empty input must not reach the model")
	}
}

func TestDiarize_ConcurrentKeepsChunkOrder(t *testing.T) {
	sentences := []string{"Uno.", "Dos.", "Tres.", "Cuatro.", "Cinco.", "Seis."}
	answers := map[string]string{}
	for _, s := range sentences {
		answers[s] = `[{"hablante":"Paciente","texto":"` + s + `"}]`
	}
	base := respondByChunk(answers)
	inv := &fakeInvoker{respond: func(req InvokeRequest) (string, error) {
		// earlier chunks finish last
		for i, s := range sentences {
			if strings.Contains(req.UserPrompt, s) {
				time.Sleep(time.Duration(len(sentences)-i) * 5 * time.Millisecond)
			}
		}
		return base(req)
	}}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{ChunkSentences: 1, Concurrency: 4})

	got, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: strings.Join(sentences, " ")})
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	var texts []string
	for _, turn := range got.Turns {
		texts = append(texts, turn.Text)
	}
	if !reflect.DeepEqual(texts, sentences) {
		t.Errorf("turn order = %v, want %v", texts, sentences)
	}
}

func TestDiarize_UsesChunkCache(t *testing.T) {
	inv := &fakeInvoker{respond: func(InvokeRequest) (string, error) {
		return `[{"hablante":"Paciente","texto":"Hola."}]`, nil
	}}
	cache := newMemChunkCache()
	svc := NewDiarizationService(inv, cache, nil, DiarizationOptions{Model: "m"})

	for i := 0; i < 2; i++ {
		if _, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: "Hola."}); err != nil {
			t.Fatalf("Diarize() error = %v", err)
		}
	}
	if inv.callCount() != 1 {
		t.Errorf("model calls = %d, want 1 with a warm cache", inv.callCount())
	}
}

func TestDiarize_ProgressEvents(t *testing.T) {
	inv := &fakeInvoker{useMocks: true}
	b := &fakeBroadcaster{}
	svc := NewDiarizationService(inv, nil, b, DiarizationOptions{ChunkSentences: 2})

	got, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: exampleTranscript, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if got.Turns[0].Speaker != model.SpeakerTherapist || got.Turns[1].Speaker != model.SpeakerPatient {
		t.Errorf("mock diarization turns = %+v", got.Turns)
	}

	events := b.all()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	last := events[1].payload.(*model.DiarizationProgress)
	if events[1].session != "s-1" || events[1].msgType != EventDiarizationProgress || last.Chunk != 2 || last.Total != 2 {
		t.Errorf("last event = %+v", events[1])
	}
}

func TestDiarize_RecordsLatestProgress(t *testing.T) {
	progress := &memProgressCache{}
	svc := NewDiarizationService(&fakeInvoker{useMocks: true}, nil, nil, DiarizationOptions{ChunkSentences: 2})
	svc.SetProgressCache(progress)

	if _, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: exampleTranscript, SessionID: "s-2"}); err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	got, _ := progress.Get(context.Background(), "s-2")
	if got == nil || got.Chunk != 2 || got.Total != 2 {
		t.Errorf("latest progress = %+v", got)
	}

	if _, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: exampleTranscript}); err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if len(progress.latest) != 1 {
		t.Errorf("requests without a session should not record progress: %v", progress.latest)
	}
}

func TestDiarize_NFCNormalization(t *testing.T) {
	var prompt string
	inv := &fakeInvoker{respond: func(req InvokeRequest) (string, error) {
		prompt = req.UserPrompt
		return `[{"hablante":"Paciente","texto":"x"}]`, nil
	}}
	svc := NewDiarizationService(inv, nil, nil, DiarizationOptions{})

	decomposed := "Me siento ansioso y cansa\u0301do."
	if _, err := svc.Diarize(context.Background(), model.DiarizeRequest{Text: decomposed}); err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if !strings.Contains(prompt, "cans\u00e1do.") {
		t.Error("transcript should be NFC-normalized before prompting")
	}
}
