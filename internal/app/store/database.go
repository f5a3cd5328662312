package store

import (
	"context"
	"errors"
	"time"

	"github.com/aseptimu/shortlink/internal/app/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolationCode = "23505"

// Database - хранилище ссылок в PostgreSQL.
// Уникальность кода и URL обеспечивают уникальные индексы таблицы links.
type Database struct {
	dbpool  *pgxpool.Pool
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewDB создаёт пул соединений и проверяет доступность базы.
func NewDB(ctx context.Context, dsn string, timeout time.Duration, logger *zap.SugaredLogger) (*Database, error) {
	dbpool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	db := &Database{dbpool: dbpool, timeout: timeout, logger: logger}
	if err := db.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return db, nil
}

func (db *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()
	return db.dbpool.Ping(ctx)
}

func (db *Database) Close() {
	db.dbpool.Close()
}

const linkColumns = "id, original_url, short_code, is_custom_alias, created_at, expires_at"

const PurgeConflictingQuery = `DELETE FROM links
	WHERE (short_code = $1 OR original_url = $2) AND expires_at <= $3`

const InsertLinkQuery = `INSERT INTO links (` + linkColumns + `)
	VALUES ($1, $2, $3, FALSE, $4, $5)
	ON CONFLICT (original_url) DO NOTHING
	RETURNING ` + linkColumns

const GetLinkByURLQuery = "SELECT " + linkColumns + " FROM links WHERE original_url = $1"

// Issue вставляет candidate, если для URL нет живой записи.
func (db *Database) Issue(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	tx, err := db.dbpool.Begin(ctx)
	if err != nil {
		return service.Outcome{}, service.NewStorageError("issue", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, PurgeConflictingQuery, candidate.ShortCode, candidate.OriginalURL, candidate.CreatedAt); err != nil {
		return service.Outcome{}, service.NewStorageError("issue", err)
	}

	out := service.Outcome{Kind: service.KindCreated}
	err = scanLink(tx.QueryRow(ctx, InsertLinkQuery,
		candidate.ID, candidate.OriginalURL, candidate.ShortCode, candidate.CreatedAt, candidate.ExpiresAt,
	), &out.Link)

	switch {
	case isUniqueViolation(err):
		db.logger.Debugw("Short code already taken", "code", candidate.ShortCode)
		return service.Outcome{}, service.ErrCodeCollision
	case errors.Is(err, pgx.ErrNoRows):
		db.logger.Debugw("URL already exists, fetching short code from DB", "originalURL", candidate.OriginalURL)
		out.Kind = service.KindExisting
		if err = scanLink(tx.QueryRow(ctx, GetLinkByURLQuery, candidate.OriginalURL), &out.Link); err != nil {
			db.logger.Errorw("Failed to retrieve existing link", "originalURL", candidate.OriginalURL, "err", err)
			return service.Outcome{}, service.NewStorageError("issue", err)
		}
	case err != nil:
		db.logger.Errorw("Failed to insert link", "code", candidate.ShortCode, "originalURL", candidate.OriginalURL, "err", err)
		return service.Outcome{}, service.NewStorageError("issue", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return service.Outcome{}, service.NewStorageError("issue", err)
	}
	return out, nil
}

const LockLinkByURLQuery = "SELECT " + linkColumns + " FROM links WHERE original_url = $1 FOR UPDATE"

const InsertAliasQuery = `INSERT INTO links (` + linkColumns + `)
	VALUES ($1, $2, $3, TRUE, $4, $5)
	ON CONFLICT (original_url) DO NOTHING
	RETURNING ` + linkColumns

// UpdateAliasQuery меняет код записи, не трогая created_at и expires_at.
const UpdateAliasQuery = `UPDATE links SET short_code = $2, is_custom_alias = TRUE
	WHERE id = $1
	RETURNING ` + linkColumns

const claimAliasAttempts = 3

// ClaimAlias закрепляет alias за URL внутри транзакции.
// Существующая запись блокируется до обновления, поэтому PreviousCode
// всегда равен коду, который был заменён. Конкурентный захват того же
// alias другим URL упирается в уникальный индекс.
func (db *Database) ClaimAlias(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	tx, err := db.dbpool.Begin(ctx)
	if err != nil {
		return service.Outcome{}, service.NewStorageError("claim alias", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, PurgeConflictingQuery, candidate.ShortCode, candidate.OriginalURL, candidate.CreatedAt); err != nil {
		return service.Outcome{}, service.NewStorageError("claim alias", err)
	}

	var out service.Outcome
	for attempt := 1; ; attempt++ {
		out, err = db.claimAliasOnce(ctx, tx, candidate)
		if !errors.Is(err, errRowRaced) {
			break
		}
		if attempt == claimAliasAttempts {
			return service.Outcome{}, service.NewStorageError("claim alias", err)
		}
		db.logger.Debugw("URL inserted concurrently, retrying alias claim", "alias", candidate.ShortCode, "attempt", attempt)
	}
	if isUniqueViolation(err) {
		return service.Outcome{}, service.ErrAliasTaken
	}
	if err != nil {
		db.logger.Errorw("Failed to claim alias", "alias", candidate.ShortCode, "originalURL", candidate.OriginalURL, "err", err)
		return service.Outcome{}, service.NewStorageError("claim alias", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return service.Outcome{}, service.NewStorageError("claim alias", err)
	}
	return out, nil
}

var errRowRaced = errors.New("link row inserted by a concurrent transaction")

// claimAliasOnce обновляет заблокированную запись URL либо вставляет новую.
// Если запись появилась между блокировкой и вставкой, возвращает errRowRaced:
// следующий запрос в той же транзакции уже увидит её.
func (db *Database) claimAliasOnce(ctx context.Context, tx pgx.Tx, candidate service.Link) (service.Outcome, error) {
	var existing service.Link
	err := scanLink(tx.QueryRow(ctx, LockLinkByURLQuery, candidate.OriginalURL), &existing)
	switch {
	case err == nil:
		out := service.Outcome{Kind: service.KindUpdatedExisting, PreviousCode: existing.ShortCode}
		err = scanLink(tx.QueryRow(ctx, UpdateAliasQuery, existing.ID, candidate.ShortCode), &out.Link)
		return out, err
	case !errors.Is(err, pgx.ErrNoRows):
		return service.Outcome{}, err
	}

	out := service.Outcome{Kind: service.KindCreated}
	err = scanLink(tx.QueryRow(ctx, InsertAliasQuery,
		candidate.ID, candidate.OriginalURL, candidate.ShortCode, candidate.CreatedAt, candidate.ExpiresAt,
	), &out.Link)
	if errors.Is(err, pgx.ErrNoRows) {
		return service.Outcome{}, errRowRaced
	}
	return out, err
}

const GetLinkByCodeQuery = "SELECT " + linkColumns + " FROM links WHERE short_code = $1 AND expires_at > $2"

func (db *Database) Resolve(ctx context.Context, code string, now time.Time) (service.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	var link service.Link
	err := scanLink(db.dbpool.QueryRow(ctx, GetLinkByCodeQuery, code, now), &link)
	if errors.Is(err, pgx.ErrNoRows) {
		return service.Link{}, service.ErrNotFound
	}
	if err != nil {
		db.logger.Errorw("Failed to query link", "code", code, "err", err)
		return service.Link{}, service.NewStorageError("resolve", err)
	}
	return link, nil
}

const DeleteExpiredQuery = "DELETE FROM links WHERE expires_at <= $1"

func (db *Database) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	cmdTag, err := db.dbpool.Exec(ctx, DeleteExpiredQuery, now)
	if err != nil {
		return 0, service.NewStorageError("delete expired", err)
	}
	return cmdTag.RowsAffected(), nil
}

func scanLink(row pgx.Row, l *service.Link) error {
	return row.Scan(&l.ID, &l.OriginalURL, &l.ShortCode, &l.IsCustomAlias, &l.CreatedAt, &l.ExpiresAt)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
