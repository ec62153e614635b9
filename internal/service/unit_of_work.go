package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/events"
	"fleet-service/internal/repository"
)

// KPICache stores computed figures per cache generation. Readers pin the generation before
// computing and pass it to both Get and Set, so a value computed before an Invalidate is never
// stored where later readers look.
type KPICache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, generation int64, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Outbox collects events raised inside a transaction. They are published only after commit.
type Outbox struct {
	events []events.Event
}

func (o *Outbox) Emit(evt events.Event) {
	o.events = append(o.events, evt)
}

type UnitOfWorkOptions struct {
	MaxRetries int
	Cache      KPICache
	Publisher  events.Publisher
	Clock      func() time.Time
}

// UnitOfWork runs every lifecycle operation as one store transaction. A transaction that loses
// an optimistic or lock race is re-run from scratch, so validation always sees fresh rows.
type UnitOfWork struct {
	store      repository.Store
	cache      KPICache
	publisher  events.Publisher
	maxRetries int
	now        func() time.Time
	log        zerolog.Logger
}

func NewUnitOfWork(store repository.Store, log zerolog.Logger, opts UnitOfWorkOptions) *UnitOfWork {
	u := &UnitOfWork{
		store:      store,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		maxRetries: opts.MaxRetries,
		now:        opts.Clock,
		log:        log,
	}
	if u.maxRetries < 1 {
		u.maxRetries = 1
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	if u.cache == nil {
		u.cache = noCache{}
	}
	if u.publisher == nil {
		u.publisher = events.NopPublisher{}
	}
	return u
}

func (u *UnitOfWork) Now() time.Time {
	return u.now()
}

func (u *UnitOfWork) Do(ctx context.Context, op string, fn func(tx repository.Tx, out *Outbox) error) error {
	var (
		out *Outbox
		err error
	)
	for attempt := 0; ; attempt++ {
		out = &Outbox{}
		err = u.store.WithinTx(ctx, func(tx repository.Tx) error {
			return fn(tx, out)
		})
		if err == nil || !errors.Is(err, repository.ErrConflict) || attempt >= u.maxRetries {
			break
		}
		u.log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("concurrent update, retrying")
	}
	if err != nil {
		return translateStoreError(err)
	}

	u.afterCommit(ctx, op, out)
	return nil
}

func (u *UnitOfWork) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	return translateStoreError(u.store.View(ctx, fn))
}

// afterCommit runs best-effort side effects; the transaction is already durable.
func (u *UnitOfWork) afterCommit(ctx context.Context, op string, out *Outbox) {
	if err := u.cache.Invalidate(ctx); err != nil {
		u.log.Warn().Err(err).Str("op", op).Msg("failed to invalidate kpi cache")
	}
	for _, evt := range out.events {
		if err := u.publisher.Publish(ctx, evt); err != nil {
			u.log.Warn().Err(err).Str("op", op).Str("event", string(evt.Type)).Msg("failed to publish event")
		}
	}
}

type noCache struct{}

func (noCache) Generation(context.Context) (int64, error)                     { return 0, nil }
func (noCache) Get(context.Context, int64, string, interface{}) (bool, error) { return false, nil }
func (noCache) Set(context.Context, int64, string, interface{}) error         { return nil }
func (noCache) Invalidate(context.Context) error                              { return nil }
