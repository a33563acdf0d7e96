package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type ActivityRow struct {
	Seq      int64
	ID       string
	PetName  string
	Type     string
	Amount   float64
	DateTime string
}

type CreateActivityParams struct {
	ID       string
	PetName  string
	Type     string
	Amount   float64
	DateTime string
}

const createActivity = `-- name: CreateActivity :one
INSERT INTO activities (id, pet_name, type, amount, date_time)
VALUES (?, ?, ?, ?, ?)
RETURNING seq, id, pet_name, type, amount, date_time
`

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (ActivityRow, error) {
	row := q.db.QueryRowContext(ctx, createActivity,
		arg.ID,
		arg.PetName,
		arg.Type,
		arg.Amount,
		arg.DateTime,
	)
	var i ActivityRow
	err := row.Scan(&i.Seq, &i.ID, &i.PetName, &i.Type, &i.Amount, &i.DateTime)
	return i, err
}

const listActivities = `-- name: ListActivities :many
SELECT seq, id, pet_name, type, amount, date_time
FROM activities
ORDER BY seq
`

func (q *Queries) ListActivities(ctx context.Context) ([]ActivityRow, error) {
	return q.list(ctx, listActivities)
}

const countActivities = `-- name: CountActivities :one
SELECT COUNT(*) FROM activities
`

func (q *Queries) CountActivities(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActivities)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]ActivityRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ActivityRow
	for rows.Next() {
		var i ActivityRow
		if err := rows.Scan(&i.Seq, &i.ID, &i.PetName, &i.Type, &i.Amount, &i.DateTime); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
