package queue

import (
	"github.com/hibiken/asynq"
)

// NewMux wires task types to their handlers for the worker binary.
func NewMux(audioHandler asynq.Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeAudioProcess, audioHandler)
	return mux
}
