package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/ataleek/portal/internal/db"
)

type MentorApplication struct {
	Username     string `db:"username"`
	Status       string `db:"status"`
	ProfileLink  string `db:"profile_link"`
	StatusReason string `db:"status_reason"`
}

type MentorRepository interface {
	Create(ctx context.Context, application *MentorApplication) error
	Get(ctx context.Context, username string) (*MentorApplication, error)
	Search(ctx context.Context, usernameQuery, status string) ([]*MentorApplication, error)
}

type pgxMentorRepository struct {
	pool *pgxpool.Pool
}

func NewPgxMentorRepository(pool *pgxpool.Pool) MentorRepository {
	return &pgxMentorRepository{pool: pool}
}

func (p *pgxMentorRepository) Create(ctx context.Context, application *MentorApplication) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("mentor_applications", "username", "status", "profile_link", "status_reason"),
		im.Values(
			psql.Arg(application.Username),
			psql.Arg(application.Status),
			psql.Arg(application.ProfileLink),
			psql.Arg(application.StatusReason),
		),
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

func (p *pgxMentorRepository) Get(ctx context.Context, username string) (*MentorApplication, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("username", "status", "profile_link", "status_reason"),
		sm.From("mentor_applications"),
		sm.Where(psql.Quote("username").EQ(psql.Arg(username))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m := &MentorApplication{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&m.Username,
		&m.Status,
		&m.ProfileLink,
		&m.StatusReason,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (p *pgxMentorRepository) Search(ctx context.Context, usernameQuery, status string) ([]*MentorApplication, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("username", "status", "profile_link", "status_reason"),
		sm.From("mentor_applications"),
		sm.Where(psql.Raw("username LIKE ?", "%"+usernameQuery+"%")),
		sm.Where(psql.Quote("status").EQ(psql.Arg(status))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*MentorApplication, error) {
		m := &MentorApplication{}
		if err := row.Scan(&m.Username, &m.Status, &m.ProfileLink, &m.StatusReason); err != nil {
			return nil, err
		}
		return m, nil
	})
}
