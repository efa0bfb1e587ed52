package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"rolecoach/internal/apperr"
	"rolecoach/internal/cache"
	"rolecoach/internal/diarize"
	"rolecoach/internal/log"
	"rolecoach/internal/model"
)

// DiarizationOptions tune how transcripts are split and sent to the model
type DiarizationOptions struct {
	Model          string
	Temperature    float32
	ChunkSentences int

	// Concurrency bounds in-flight model calls per request. 1 is sequential.
	Concurrency int
}

// DiarizationService attributes transcript sentences to therapist or patient
type DiarizationService struct {
	invoker       ModelInvoker
	chunkCache    cache.ChunkCache
	progressCache cache.ProgressCache
	broadcaster   Broadcaster
	opts          DiarizationOptions
	logger        zerolog.Logger
}

// NewDiarizationService creates a diarization service. chunkCache and
// broadcaster may be nil.
func NewDiarizationService(invoker ModelInvoker, chunkCache cache.ChunkCache, broadcaster Broadcaster, opts DiarizationOptions) *DiarizationService {
	if opts.ChunkSentences <= 0 {
		opts.ChunkSentences = diarize.DefaultChunkSentences
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &DiarizationService{
		invoker:     invoker,
		chunkCache:  chunkCache,
		broadcaster: broadcaster,
		opts:        opts,
		logger:      log.Component("diarization"),
	}
}

// SetProgressCache records the latest progress of each session for late subscribers
func (s *DiarizationService) SetProgressCache(pc cache.ProgressCache) {
	s.progressCache = pc
}

// Diarize splits the transcript into chunks, asks the model to label each one
// and concatenates the recovered turns in chunk order. A chunk whose call
// fails or yields nothing usable is skipped; only a transcript with no turns
// at all is an error.
func (s *DiarizationService) Diarize(ctx context.Context, req model.DiarizeRequest) (*model.DiarizationResult, error) {
	text := norm.NFC.String(strings.TrimSpace(req.Text))
	if text == "" {
		return nil, apperr.MissingField("text")
	}

	chunks := diarize.Segment(text, s.opts.ChunkSentences)
	results := make([][]model.DiarizedTurn, len(chunks))
	failed := make([]bool, len(chunks))
	var completed atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			turns, err := s.diarizeChunk(ctx, chunk)
			if err != nil {
				s.logger.Warn().Err(err).Int("chunk", i).Int("chunks", len(chunks)).Msg("chunk skipped")
				failed[i] = true
			} else {
				results[i] = turns
			}
			s.progress(ctx, req.SessionID, int(completed.Add(1)), len(chunks), len(turns), err != nil)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, apperr.ModelUnavailable(err)
	}

	result := &model.DiarizationResult{
		Turns:        []model.DiarizedTurn{},
		Chunks:       len(chunks),
		FailedChunks: []int{},
	}
	for i := range chunks {
		if failed[i] {
			result.FailedChunks = append(result.FailedChunks, i)
		}
		result.Turns = append(result.Turns, results[i]...)
	}

	if len(result.Turns) == 0 {
		return nil, apperr.MalformedOutput(fmt.Errorf("no turns recovered from %d chunk(s)", len(chunks)))
	}

	s.logger.Info().
		Int("chunks", result.Chunks).
		Int("failedChunks", len(result.FailedChunks)).
		Int("turns", len(result.Turns)).
		Msg("transcript diarized")
	return result, nil
}

func (s *DiarizationService) diarizeChunk(ctx context.Context, chunk string) ([]model.DiarizedTurn, error) {
	if s.chunkCache != nil {
		turns, err := s.chunkCache.Get(ctx, s.opts.Model, chunk)
		if err != nil {
			s.logger.Warn().Err(err).Msg("chunk cache read failed")
		} else if len(turns) > 0 {
			return turns, nil
		}
	}

	raw, err := s.invoker.Invoke(ctx, InvokeRequest{
		SystemPrompt: diarizeSystemPrompt,
		UserPrompt:   buildDiarizePrompt(chunk),
		Model:        s.opts.Model,
		Temperature:  s.opts.Temperature,
		Mock:         mockDiarization(chunk),
	})
	if err != nil {
		return nil, err
	}

	turns, err := diarize.ExtractTurns(raw)
	if err != nil {
		return nil, err
	}

	if s.chunkCache != nil {
		if err := s.chunkCache.Set(ctx, s.opts.Model, chunk, turns); err != nil {
			s.logger.Warn().Err(err).Msg("chunk cache write failed")
		}
	}
	return turns, nil
}

func (s *DiarizationService) progress(ctx context.Context, sessionID string, done, total, turns int, failed bool) {
	if sessionID == "" {
		return
	}
	event := &model.DiarizationProgress{
		SessionID: sessionID,
		Chunk:     done,
		Total:     total,
		Turns:     turns,
		Failed:    failed,
	}
	if s.progressCache != nil {
		if err := s.progressCache.Set(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("progress cache write failed")
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, EventDiarizationProgress, event)
	}
}

const diarizeSystemPrompt = `Eres un asistente que separa transcripciones de sesiones de psicoterapia por hablante.
Respondes ÚNICAMENTE con un arreglo JSON, sin comentarios ni bloques de código.`

func buildDiarizePrompt(chunk string) string {
	return fmt.Sprintf(`Divide el siguiente fragmento de una sesión en turnos y asigna cada uno a "Terapeuta" o "Paciente".
Devuelve SOLO un arreglo JSON con esta forma:
[{"hablante": "Terapeuta", "texto": "..."}, {"hablante": "Paciente", "texto": "..."}]

Reglas:
1. Conserva el texto original de cada turno, sin resumir ni corregir.
2. Respeta el orden en que aparecen las frases.
3. El terapeuta suele preguntar, reflejar, validar o proponer; el paciente relata síntomas, emociones y vivencias.
4. Si una frase es ambigua, asígnala al hablante del turno anterior.

Fragmento:
%s`, chunk)
}

// mockDiarization labels questions as the therapist and everything else as
// the patient. Used when no model provider is configured.
func mockDiarization(chunk string) string {
	type rawTurn struct {
		Hablante string `json:"hablante"`
		Texto    string `json:"texto"`
	}
	sentences := diarize.Sentences(chunk)
	turns := make([]rawTurn, 0, len(sentences))
	for _, sentence := range sentences {
		speaker := model.SpeakerPatient
		if strings.HasSuffix(sentence, "?") {
			speaker = model.SpeakerTherapist
		}
		turns = append(turns, rawTurn{Hablante: string(speaker), Texto: sentence})
	}
	b, err := json.Marshal(turns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
