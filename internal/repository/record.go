package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrAlreadyRecorded = errors.New("session is already recorded")

// Record is a won game.
type Record struct {
	RecordId   int64     `db:"record_id" json:"record_id"`
	SessionId  uuid.UUID `db:"session_id" json:"session_id"`
	Columns    int       `db:"columns" json:"columns"`
	Rows       int       `db:"rows" json:"rows"`
	MineCount  int       `db:"mine_count" json:"mine_count"`
	MovesMade  int       `db:"moves_made" json:"moves_made"`
	PlaytimeMs int64     `db:"playtime_ms" json:"playtime_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateRecordParams struct {
	SessionId  uuid.UUID
	Columns    int
	Rows       int
	MineCount  int
	MovesMade  int
	PlaytimeMs int64
}

func (q *Queries) CreateRecord(
	ctx context.Context, arg CreateRecordParams,
) (*Record, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO record (
			session_id, columns, rows, mine_count, moves_made, playtime_ms
		) VALUES (
			@sessionId, @columns, @rows, @mineCount, @movesMade, @playtimeMs
		) RETURNING *`,
		pgx.NamedArgs{
			"sessionId":  arg.SessionId,
			"columns":    arg.Columns,
			"rows":       arg.Rows,
			"mineCount":  arg.MineCount,
			"movesMade":  arg.MovesMade,
			"playtimeMs": arg.PlaytimeMs,
		},
	)
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Record])
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, ErrAlreadyRecorded
	}
	return record, err
}

type RecordFilter struct {
	Columns   *int `schema:"columns"`
	Rows      *int `schema:"rows"`
	MineCount *int `schema:"mine_count"`
	Limit     int  `schema:"limit"`
}

const defaultRecordLimit = 50

func (f RecordFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Columns != nil {
		clauses = append(clauses, "columns = @columns")
		args["columns"] = *f.Columns
	}
	if f.Rows != nil {
		clauses = append(clauses, "rows = @rows")
		args["rows"] = *f.Rows
	}
	if f.MineCount != nil {
		clauses = append(clauses, "mine_count = @mineCount")
		args["mineCount"] = *f.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

// GetRecords lists the fastest wins matching filter.
func (q *Queries) GetRecords(
	ctx context.Context, filter RecordFilter,
) ([]Record, error) {
	query := "SELECT * FROM record"

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultRecordLimit {
		limit = defaultRecordLimit
	}
	args["limit"] = limit
	query += " ORDER BY playtime_ms, moves_made, created_at LIMIT @limit"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Record])
}
