package service

// Broadcaster pushes events to websocket subscribers of a session channel.
// Declared here so services do not import the transport layer.
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
}

// Event types sent over the session channel
const (
	EventDiarizationProgress = "diarization_progress"
	EventAnalysisReady       = "analysis_ready"
)
