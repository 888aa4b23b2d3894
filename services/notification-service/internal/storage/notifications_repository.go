package storage

import (
	"context"

	"github.com/equitylawandco/lawsite/libs/db"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Notification is one delivery attempt to one recipient.
type Notification struct {
	Kind        string
	AggregateID string
	Template    string
	Recipient   string
	Subject     string
	Provider    string
	Status      string
	StatusCode  int
	Response    string
	Error       string
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (kind, aggregate_id, template, recipient, subject, provider, status, status_code, response, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
	`, n.Kind, n.AggregateID, n.Template, n.Recipient, n.Subject, n.Provider, n.Status, n.StatusCode, n.Response, n.Error)
	return err
}
