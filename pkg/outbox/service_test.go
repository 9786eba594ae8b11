package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/freightlink-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox/payloads"
)

func TestEmitPersistsEnvelopeInTransaction(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ctx := context.Background()

	loadID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: string(enums.RoleAdmin)}
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventServiceFeesWaived,
			AggregateType: enums.AggregateLoad,
			AggregateID:   loadID,
			Actor:         actor,
			Data:          payloads.ServiceFeesWaivedEvent{LoadID: loadID, Reason: "no corridor"},
		})
	}))

	rows, err := repo.ListByAggregate(ctx, enums.AggregateLoad, loadID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	env, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, actor.UserID, env.Actor.UserID)
	assert.JSONEq(t, `{"load_id":"`+loadID.String()+`","reason":"no corridor"}`, string(env.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ctx := context.Background()

	loadID := uuid.New()
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventSettlementPaid,
			AggregateType: enums.AggregateLoad,
			AggregateID:   loadID,
			Data:          map[string]string{"ok": "yes"},
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	rows, err := repo.ListByAggregate(ctx, enums.AggregateLoad, loadID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEmitRejectsUnknownTypesAndMissingTx(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventSettlementPaid, AggregateType: enums.AggregateLoad})
	assert.Error(t, err)

	client := dbtest.Open(t)
	svc = NewService(NewRepository(client.DB()), nil)
	err = svc.Emit(context.Background(), client.DB(), DomainEvent{EventType: "bogus", AggregateType: enums.AggregateLoad})
	assert.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(ctx, client.DB(), DomainEvent{
			EventType:     enums.EventLoadStatusChanged,
			AggregateType: enums.AggregateLoad,
			AggregateID:   uuid.New(),
			Data:          map[string]int{"n": i},
		}))
	}

	rows, err := repo.FetchUnpublished(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, repo.MarkPublished(ctx, rows[0].ID))
	require.NoError(t, repo.MarkFailed(ctx, rows[1].ID, errors.New("publish failed")))
	require.NoError(t, repo.MarkFailed(ctx, rows[1].ID, errors.New("publish failed again")))

	remaining, err := repo.FetchUnpublished(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, rows[2].ID, remaining[0].ID)

	require.NoError(t, repo.MarkTerminal(ctx, rows[2].ID, errors.New("bad envelope"), 2))
	remaining, err = repo.FetchUnpublished(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	deleted, err := repo.DeletePublishedBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
