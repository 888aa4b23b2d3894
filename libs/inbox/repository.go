package inbox

import (
	"context"

	"github.com/equitylawandco/lawsite/libs/db"
)

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// Record marks an event as seen for consumer. It returns false when the event
// was already recorded.
func (r *Repository) Record(ctx context.Context, consumer, eventID, eventType string) (bool, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO inbox_events (consumer, event_id, event_type)
		VALUES ($1, $2, $3)
	`, consumer, eventID, eventType)
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	return false, err
}

// Forget removes a recorded event so it can be processed again after a handler failure.
func (r *Repository) Forget(ctx context.Context, consumer, eventID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM inbox_events
		WHERE consumer = $1 AND event_id = $2
	`, consumer, eventID)
	return err
}
