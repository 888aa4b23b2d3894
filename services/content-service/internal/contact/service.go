// Package contact stores contact form messages and announces them to the
// notification pipeline.
package contact

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/metrics"
	"github.com/equitylawandco/lawsite/libs/outbox"
	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
	"github.com/equitylawandco/lawsite/services/content-service/internal/storage"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	repo    *storage.Repository
	outbox  *outbox.Repository
	metrics *metrics.ContentMetrics
	logger  *slog.Logger
}

func NewService(repo *storage.Repository, outboxRepo *outbox.Repository, m *metrics.ContentMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, outbox: outboxRepo, metrics: m, logger: logger}
}

// Submit validates and stores msg. The contact.submitted event is written in
// the same transaction so the emails follow every stored message.
func (s *Service) Submit(ctx context.Context, msg *content.ContactMessage) error {
	if err := msg.Normalize(); err != nil {
		return err
	}
	err := db.InTx(ctx, s.repo, func(tx pgx.Tx) error {
		if err := s.repo.InsertContactMessage(ctx, tx, msg); err != nil {
			return err
		}
		return s.outbox.InsertJSON(ctx, tx, "contact_message", strconv.FormatInt(msg.ID, 10), events.ContactSubmittedV1, events.ContactSubmitted{
			MessageID:   msg.ID,
			Name:        msg.Name,
			Email:       msg.Email,
			Phone:       msg.Phone,
			Message:     msg.Message,
			SubmittedAt: msg.CreatedAt,
		})
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveContactMessage()
	s.logger.Info("contact message received", "message_id", msg.ID)
	return nil
}

func (s *Service) List(ctx context.Context, unreadOnly bool, limit int) ([]content.ContactMessage, error) {
	return s.repo.ListContactMessages(ctx, unreadOnly, limit)
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkContactMessageRead(ctx, id)
}
