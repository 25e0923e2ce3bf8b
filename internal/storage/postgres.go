package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// Migrate brings the schema up to date with the embedded goose migrations.
func Migrate(ctx context.Context, dsn string, logger internal.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("storage: open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("storage: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("storage: run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("storage: verify migration version: %w", err)
	}
	logger.Infof("storage: database migrated to version %d", version)
	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) mapErr(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &internal.NotFoundError{Resource: resource, ID: id}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("storage: %s %s: %w", resource, pgErr.ConstraintName, internal.ErrConflict)
		case foreignKeyViolation:
			// every foreign key points at users
			return fmt.Errorf("storage: %s %s: %w", resource, id, &internal.NotFoundError{Resource: "user"})
		}
	}
	return err
}

// --- UserRepository ---
func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, avatar_url, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.AvatarURL, user.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert user: %v", err)
		return p.mapErr(err, "user", user.Username)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, avatar_url, created_at`

func scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, p.mapErr(err, "user", id)
	}
	return u, nil
}

func (p *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($1) LIMIT 1`, login))
	if err != nil {
		return nil, p.mapErr(err, "user", login)
	}
	return u, nil
}

func (p *PostgresStorage) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET avatar_url = $1 WHERE id = $2`, avatarURL, userID)
	if err != nil {
		p.logger.Errorf("failed to update avatar: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return &internal.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}

func (p *PostgresStorage) EnsureUser(ctx context.Context, user *internal.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, avatar_url, created_at) VALUES ($1, $2, $3, '', $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Username, user.Email, user.AvatarURL, createdAt)
	if err != nil {
		p.logger.Errorf("failed to provision user %s: %v", user.ID, err)
		return p.mapErr(err, "user", user.Username)
	}
	return nil
}

// --- SessionRepository ---
func (p *PostgresStorage) SaveSession(ctx context.Context, s *internal.Session) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		p.logger.Errorf("failed to save session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetSession(ctx context.Context, token string) (*internal.Session, error) {
	var s internal.Session
	err := p.pool.QueryRow(ctx, `SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`, token).
		Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, p.mapErr(err, "session", "token")
	}
	return &s, nil
}

func (p *PostgresStorage) DeleteSession(ctx context.Context, token string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		p.logger.Errorf("failed to delete session: %v", err)
		return err
	}
	return nil
}

// --- EntryRepository ---
func (p *PostgresStorage) InsertEntry(ctx context.Context, e *internal.Entry) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO entries (id, user_id, kind, data, observation, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.OwnerID, string(e.Kind()), data, e.Observation, e.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert entry: %v", err)
		return p.mapErr(err, "entry", e.ID)
	}
	return nil
}

func (p *PostgresStorage) UpdateEntry(ctx context.Context, e *internal.Entry) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `UPDATE entries SET data = $1, observation = $2 WHERE id = $3 AND user_id = $4 AND kind = $5`,
		data, e.Observation, e.ID, e.OwnerID, string(e.Kind()))
	if err != nil {
		p.logger.Errorf("failed to update entry: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return &internal.NotFoundError{Resource: "entry", ID: e.ID}
	}
	return nil
}

func (p *PostgresStorage) DeleteEntry(ctx context.Context, ownerID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		p.logger.Errorf("failed to delete entry: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return &internal.NotFoundError{Resource: "entry", ID: id}
	}
	return nil
}

const entryColumns = `id, user_id, kind, data, observation, created_at`

func scanEntry(row pgx.Row) (*internal.Entry, error) {
	var (
		e    internal.Entry
		kind string
		data []byte
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &kind, &data, &e.Observation, &e.CreatedAt); err != nil {
		return nil, err
	}
	payload, err := internal.DecodePayload(internal.EntryKind(kind), data)
	if err != nil {
		return nil, fmt.Errorf("storage: entry %s: %w", e.ID, err)
	}
	e.Payload = payload
	return &e, nil
}

func (p *PostgresStorage) GetEntry(ctx context.Context, ownerID, id string) (*internal.Entry, error) {
	e, err := scanEntry(p.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1 AND user_id = $2`, id, ownerID))
	if err != nil {
		return nil, p.mapErr(err, "entry", id)
	}
	return e, nil
}

func (p *PostgresStorage) ListEntries(ctx context.Context, ownerID string) ([]internal.Entry, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+entryColumns+` FROM entries WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		p.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			p.logger.Errorf("failed to scan entry: %v", err)
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// --- ProfileRepository ---
func (p *PostgresStorage) UpsertProfile(ctx context.Context, profile *internal.BabyProfile) error {
	birth, err := time.Parse(time.DateOnly, profile.BirthDate)
	if err != nil {
		return internal.NewValidationError("birth_date must be YYYY-MM-DD", "birth_date")
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO baby_profiles (user_id, name, weight_kg, length_cm, birth_date, conditions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, weight_kg = EXCLUDED.weight_kg, length_cm = EXCLUDED.length_cm,
			birth_date = EXCLUDED.birth_date, conditions = EXCLUDED.conditions, updated_at = EXCLUDED.updated_at`,
		profile.OwnerID, profile.Name, profile.WeightKg, profile.LengthCm, birth, profile.Conditions, profile.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert baby profile: %v", err)
		return p.mapErr(err, "baby profile", profile.OwnerID)
	}
	return nil
}

func (p *PostgresStorage) GetProfile(ctx context.Context, ownerID string) (*internal.BabyProfile, error) {
	var (
		profile internal.BabyProfile
		birth   time.Time
	)
	err := p.pool.QueryRow(ctx, `SELECT user_id, name, weight_kg, length_cm, birth_date, conditions, updated_at FROM baby_profiles WHERE user_id = $1`, ownerID).
		Scan(&profile.OwnerID, &profile.Name, &profile.WeightKg, &profile.LengthCm, &birth, &profile.Conditions, &profile.UpdatedAt)
	if err != nil {
		return nil, p.mapErr(err, "baby profile", ownerID)
	}
	profile.BirthDate = birth.Format(time.DateOnly)
	return &profile, nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ SessionRepository = (*PostgresStorage)(nil)
var _ EntryRepository = (*PostgresStorage)(nil)
var _ ProfileRepository = (*PostgresStorage)(nil)
