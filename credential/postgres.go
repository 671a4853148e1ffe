package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/MrEthical07/authservice/credential/migrations"
	"github.com/MrEthical07/authservice/secret"
)

const uniqueViolation = "23505"

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists users in the users table. The schema is applied by
// Migrate.
type PostgresStore struct {
	db     DBTX
	hasher Hasher
}

func NewPostgresStore(db DBTX, hasher Hasher) *PostgresStore {
	return &PostgresStore{db: db, hasher: hasher}
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate credentials: %w", err)
	}
	return nil
}

// Register checks for an existing row before hashing so a duplicate never pays
// for the KDF. The insert still relies on the primary key for races.
func (s *PostgresStore) Register(ctx context.Context, identity Identity, plaintext secret.String, requires2FA bool) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		identity.String(),
	).Scan(&exists)
	if err != nil {
		return backendErr(ctx, err)
	}
	if exists {
		return ErrUserExists
	}

	encoded, err := s.hasher.Hash(ctx, plaintext.Reveal())
	if err != nil {
		return backendErr(ctx, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa) VALUES ($1, $2, $3)`,
		identity.String(), encoded, requires2FA,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUserExists
		}
		return backendErr(ctx, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identity Identity) (User, error) {
	user := User{Identity: identity}
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, requires_2fa FROM users WHERE email = $1`,
		identity.String(),
	).Scan(&user.PasswordHash, &user.Requires2FA)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, backendErr(ctx, err)
	}
	return user, nil
}

func (s *PostgresStore) Validate(ctx context.Context, identity Identity, plaintext secret.String) error {
	user, err := s.Get(ctx, identity)
	if err != nil {
		return err
	}
	return verify(ctx, s.hasher, user, plaintext)
}
