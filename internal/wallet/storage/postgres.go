package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"indy/internal/platform/database"
	"indy/migrations"
	"indy/pkg/platform/sentinel"
)

// TypePostgres is the registry name of the PostgreSQL backend.
const TypePostgres = "postgres"

// postgresConfig is the storage_config understood by the backend.
type postgresConfig struct {
	URL            string `json:"url"`
	MaxConnections int    `json:"max_connections"`
}

type postgresCredentials struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// PostgresBackend stores all wallets of one database in two shared
// tables, partitioned by wallet id. Connection pools are shared per DSN.
type PostgresBackend struct {
	mu    sync.Mutex
	pools map[string]*sql.DB
	fixed *sql.DB
}

// NewPostgres creates the backend.
func NewPostgres() *PostgresBackend {
	return &PostgresBackend{pools: make(map[string]*sql.DB)}
}

// NewPostgresWithDB serves every wallet from an existing connection pool.
// The schema must already be applied.
func NewPostgresWithDB(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{pools: make(map[string]*sql.DB), fixed: db}
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	cfg := database.DefaultConfig()
	cfg.URL = dsn
	if maxConns > 0 {
		cfg.MaxOpenConns = maxConns
	}
	pool, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("empty url: %w", sentinel.ErrInvalidInput)
	}
	if err := database.ApplySchema(ctx, pool.DB(), migrations.FS); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool.DB(), nil
}

func dsn(config, credentials string) (string, int, error) {
	var cfg postgresConfig
	if err := json.Unmarshal([]byte(config), &cfg); err != nil || cfg.URL == "" {
		return "", 0, fmt.Errorf("postgres storage config needs url: %w", sentinel.ErrInvalidInput)
	}
	if credentials == "" {
		return cfg.URL, cfg.MaxConnections, nil
	}
	var creds postgresCredentials
	if err := json.Unmarshal([]byte(credentials), &creds); err != nil {
		return "", 0, fmt.Errorf("postgres storage credentials: %w", sentinel.ErrInvalidInput)
	}
	if creds.Account == "" {
		return cfg.URL, cfg.MaxConnections, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", 0, fmt.Errorf("postgres url: %w", sentinel.ErrInvalidInput)
	}
	u.User = url.UserPassword(creds.Account, creds.Password)
	return u.String(), cfg.MaxConnections, nil
}

func (b *PostgresBackend) db(ctx context.Context, config, credentials string) (*sql.DB, error) {
	if b.fixed != nil {
		return b.fixed, nil
	}
	d, maxConns, err := dsn(config, credentials)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if db, ok := b.pools[d]; ok {
		return db, nil
	}
	db, err := openPool(ctx, d, maxConns)
	if err != nil {
		return nil, fmt.Errorf("connect wallet database: %w", err)
	}
	b.pools[d] = db
	return db, nil
}

func (b *PostgresBackend) Create(ctx context.Context, id, config, credentials string, metadata []byte) error {
	db, err := b.db(ctx, config, credentials)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO wallets (id, metadata) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, metadata)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("create wallet rows: %w", err)
	} else if n == 0 {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (b *PostgresBackend) Open(ctx context.Context, id, config, credentials string) (Storage, error) {
	db, err := b.db(ctx, config, credentials)
	if err != nil {
		return nil, err
	}
	var one int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM wallets WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	return &postgresWallet{db: db, id: id}, nil
}

func (b *PostgresBackend) Delete(ctx context.Context, id, config, credentials string) error {
	db, err := b.db(ctx, config, credentials)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete wallet rows: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type postgresWallet struct {
	db *sql.DB
	id string
}

func (w *postgresWallet) Metadata(ctx context.Context) ([]byte, error) {
	var md []byte
	err := w.db.QueryRowContext(ctx, `SELECT metadata FROM wallets WHERE id = $1`, w.id).Scan(&md)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return md, nil
}

func (w *postgresWallet) SetMetadata(ctx context.Context, metadata []byte) error {
	_, err := w.db.ExecContext(ctx, `UPDATE wallets SET metadata = $2 WHERE id = $1`, w.id, metadata)
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func encodeTags(tags []Tag) ([]byte, error) {
	if tags == nil {
		tags = []Tag{}
	}
	sortTags(tags)
	return json.Marshal(tags)
}

func (w *postgresWallet) Add(ctx context.Context, rec *Record) error {
	tags, err := encodeTags(rec.Clone().Tags)
	if err != nil {
		return err
	}
	_, err = w.db.ExecContext(ctx, `
		INSERT INTO wallet_items (wallet_id, type, name, value, key, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, w.id, rec.Type, rec.ID, rec.Value, rec.Key, tags)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("add record: %w", err)
	}
	return nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*Record, error) {
	var rec Record
	var tags []byte
	if err := row.Scan(&rec.Type, &rec.ID, &rec.Value, &rec.Key, &tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &rec.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &rec, nil
}

func (w *postgresWallet) Get(ctx context.Context, typ, id []byte) (*Record, error) {
	rec, err := scanRecord(w.db.QueryRowContext(ctx, `
		SELECT type, name, value, key, tags FROM wallet_items
		WHERE wallet_id = $1 AND type = $2 AND name = $3
	`, w.id, typ, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (w *postgresWallet) exec(ctx context.Context, query string, args ...any) error {
	res, err := w.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (w *postgresWallet) UpdateValue(ctx context.Context, typ, id, value, key []byte) error {
	return w.exec(ctx, `
		UPDATE wallet_items SET value = $4, key = $5
		WHERE wallet_id = $1 AND type = $2 AND name = $3
	`, w.id, typ, id, value, key)
}

func (w *postgresWallet) UpdateTags(ctx context.Context, typ, id []byte, tags []Tag) error {
	encoded, err := encodeTags(append([]Tag(nil), tags...))
	if err != nil {
		return err
	}
	return w.exec(ctx, `
		UPDATE wallet_items SET tags = $4
		WHERE wallet_id = $1 AND type = $2 AND name = $3
	`, w.id, typ, id, encoded)
}

// mutateTags rewrites the tag set inside a transaction holding the row lock.
func (w *postgresWallet) mutateTags(ctx context.Context, typ, id []byte, fn func([]Tag) []Tag) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT tags FROM wallet_items
		WHERE wallet_id = $1 AND type = $2 AND name = $3
		FOR UPDATE
	`, w.id, typ, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock record: %w", err)
	}
	var tags []Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	encoded, err := encodeTags(fn(tags))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE wallet_items SET tags = $4
		WHERE wallet_id = $1 AND type = $2 AND name = $3
	`, w.id, typ, id, encoded); err != nil {
		return fmt.Errorf("update tags: %w", err)
	}
	return tx.Commit()
}

func (w *postgresWallet) AddTags(ctx context.Context, typ, id []byte, tags []Tag) error {
	return w.mutateTags(ctx, typ, id, func(existing []Tag) []Tag {
		return MergeTags(existing, tags)
	})
}

func (w *postgresWallet) DeleteTags(ctx context.Context, typ, id []byte, names [][]byte) error {
	return w.mutateTags(ctx, typ, id, func(existing []Tag) []Tag {
		return RemoveTags(existing, names)
	})
}

func (w *postgresWallet) Delete(ctx context.Context, typ, id []byte) error {
	return w.exec(ctx, `
		DELETE FROM wallet_items WHERE wallet_id = $1 AND type = $2 AND name = $3
	`, w.id, typ, id)
}

// Search reads the matching rows in one statement, which gives the cursor
// a consistent snapshot.
func (w *postgresWallet) Search(ctx context.Context, typ []byte) (Iterator, error) {
	var rows *sql.Rows
	var err error
	if typ == nil {
		rows, err = w.db.QueryContext(ctx, `
			SELECT type, name, value, key, tags FROM wallet_items
			WHERE wallet_id = $1 ORDER BY type, name
		`, w.id)
	} else {
		rows, err = w.db.QueryContext(ctx, `
			SELECT type, name, value, key, tags FROM wallet_items
			WHERE wallet_id = $1 AND type = $2 ORDER BY name
		`, w.id, typ)
	}
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return NewSliceIterator(recs), nil
}

func (w *postgresWallet) Close() error { return nil }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
