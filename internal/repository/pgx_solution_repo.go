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

type Solution struct {
	URL      string `db:"url"`
	Username string `db:"username"`
}

type SolutionRepository interface {
	Create(ctx context.Context, solution *Solution) error
	ListByUsername(ctx context.Context, username string) ([]*Solution, error)
	Search(ctx context.Context, usernameQuery string) ([]*Solution, error)
}

type pgxSolutionRepository struct {
	pool *pgxpool.Pool
}

func NewPgxSolutionRepository(pool *pgxpool.Pool) SolutionRepository {
	return &pgxSolutionRepository{pool: pool}
}

func (p *pgxSolutionRepository) Create(ctx context.Context, solution *Solution) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("solutions", "url", "username"),
		im.Values(psql.Arg(solution.URL), psql.Arg(solution.Username)),
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

func (p *pgxSolutionRepository) ListByUsername(ctx context.Context, username string) ([]*Solution, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("url", "username"),
		sm.From("solutions"),
		sm.Where(psql.Quote("username").EQ(psql.Arg(username))),
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

	return collectSolutions(rows)
}

func (p *pgxSolutionRepository) Search(ctx context.Context, usernameQuery string) ([]*Solution, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("url", "username"),
		sm.From("solutions"),
		sm.Where(psql.Raw("username LIKE ?", "%"+usernameQuery+"%")),
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

	return collectSolutions(rows)
}

func collectSolutions(rows pgx.Rows) ([]*Solution, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Solution, error) {
		s := &Solution{}
		if err := row.Scan(&s.URL, &s.Username); err != nil {
			return nil, err
		}
		return s, nil
	})
}
