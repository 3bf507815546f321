package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"

	"github.com/ataleek/portal/internal/db"
)

// DeliveryRepository records processed webhook delivery ids so that a
// redelivered event is recognized instead of reacted to twice.
type DeliveryRepository interface {
	// Record stores a delivery id, returning ErrAlreadyExists when the
	// same delivery was seen before.
	Record(ctx context.Context, deliveryID string) error
}

type pgxDeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewPgxDeliveryRepository(pool *pgxpool.Pool) DeliveryRepository {
	return &pgxDeliveryRepository{pool: pool}
}

func (p *pgxDeliveryRepository) Record(ctx context.Context, deliveryID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("webhook_deliveries", "delivery_id"),
		im.Values(psql.Arg(deliveryID)),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}
