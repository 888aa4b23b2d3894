package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/metrics"
	"github.com/equitylawandco/lawsite/libs/outbox"
	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
	"github.com/equitylawandco/lawsite/services/content-service/internal/storage"
)

func newService(t *testing.T) (pgxmock.PgxPoolIface, *Service, *prometheus.Registry) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	reg := prometheus.NewRegistry()
	svc := NewService(storage.NewRepository(mock), outbox.NewRepository(), metrics.NewContentMetrics(reg), nil)
	return mock, svc, reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestSubmitStoresMessageAndEvent(t *testing.T) {
	mock, svc, reg := newService(t)
	created := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO contact_messages`).
		WithArgs("Grace", "grace@example.com", "", "Need help with a lease.").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), created))
	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs(pgxmock.AnyArg(), "contact_message", "12", events.ContactSubmittedV1, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	msg := &content.ContactMessage{Name: " Grace ", Email: "grace@example.com", Message: "Need help with a lease."}
	require.NoError(t, svc.Submit(context.Background(), msg))
	require.Equal(t, int64(12), msg.ID)
	require.Equal(t, "Grace", msg.Name)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, float64(1), counterValue(t, reg, "lawsite_content_contact_messages_total"))
}

func TestSubmitRejectsInvalidMessage(t *testing.T) {
	mock, svc, reg := newService(t)
	err := svc.Submit(context.Background(), &content.ContactMessage{Name: "Grace", Email: "not-an-email", Message: "hi"})
	var verr *content.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "email", verr.Field)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, float64(0), counterValue(t, reg, "lawsite_content_contact_messages_total"))
}

func TestSubmitRollsBackWhenOutboxFails(t *testing.T) {
	mock, svc, _ := newService(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO contact_messages`).
		WithArgs("Grace", "grace@example.com", "", "hi").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))
	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs(pgxmock.AnyArg(), "contact_message", "3", events.ContactSubmittedV1, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := svc.Submit(context.Background(), &content.ContactMessage{Name: "Grace", Email: "grace@example.com", Message: "hi"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
