package model

// Speaker is the inferred role of a turn
type Speaker string

const (
	SpeakerPatient   Speaker = "Paciente"
	SpeakerTherapist Speaker = "Terapeuta"
)

// DiarizedTurn is one attributed utterance
type DiarizedTurn struct {
	Speaker Speaker `json:"speaker" bson:"speaker"`
	Text    string  `json:"text" bson:"text"`
}

// DiarizeRequest is the body of POST /v1/diarize
type DiarizeRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId,omitempty"`
}

// DiarizationResult is the concatenation, in chunk order, of every chunk's turns
type DiarizationResult struct {
	Turns        []DiarizedTurn `json:"turns"`
	Chunks       int            `json:"chunks"`
	FailedChunks []int          `json:"failedChunks"`
}

// DiarizationProgress is pushed over websocket after each chunk
type DiarizationProgress struct {
	SessionID string `json:"sessionId"`
	Chunk     int    `json:"chunk"`
	Total     int    `json:"total"`
	Turns     int    `json:"turns"`
	Failed    bool   `json:"failed"`
}
