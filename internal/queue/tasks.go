package queue

const (
	TypeAudioProcess = "audio:process"
)

type AudioProcessPayload struct {
	TranscriptID string `json:"transcript_id"`
}
