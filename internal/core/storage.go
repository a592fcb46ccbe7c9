package core

import "context"

// HistoryRepository persists every issued question so the same (field, text)
// pair is never asked to the same user twice.
type HistoryRepository interface {
	PreviouslyAsked(ctx context.Context, userID string) (map[AskedPair]struct{}, error)
	RecordAttempt(ctx context.Context, record Record, questions []Question) error
}

// InteractionRepository is the append-only log of graded answers. It feeds
// the learning loop: online reward updates replay from it at startup.
type InteractionRepository interface {
	AddInteraction(ctx context.Context, it Interaction) error
	GetInteractions(ctx context.Context) ([]Interaction, error)
}
