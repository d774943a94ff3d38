// Package sqlitestore is an encrypted, file-backed authsdk.SessionStore for
// native clients. Each token is sealed with AES-256-GCM under a key derived
// from a passphrase; the salt lives in the same file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/betomoedano/expo-oauth-example/pkg/authsdk"
	"github.com/betomoedano/expo-oauth-example/pkg/cryptox"

	_ "modernc.org/sqlite"
)

// Item keys. They double as the GCM additional data so a sealed access token
// cannot be replayed as a refresh token.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"

	metaSalt = "kdf_salt"
)

// ErrLocked is returned when the passphrase does not open the stored items.
var ErrLocked = errors.New("sqlitestore: cannot decrypt session, wrong passphrase")

// Store implements authsdk.SessionStore.
type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
	now    func() time.Time
}

var _ authsdk.SessionStore = (*Store)(nil)

// Open opens (or creates) the cache at dsn, applies migrations and derives the
// sealing key from passphrase.
func Open(ctx context.Context, dsn string, passphrase []byte) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Single connection: concurrent writers would hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	salt, err := s.salt(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.sealer, err = cryptox.NewSealer(passphrase, salt)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// salt returns the stored KDF salt, creating one on first use.
func (s *Store) salt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM cache_meta WHERE name = ?`, metaSalt).Scan(&salt)
	switch {
	case err == nil:
		return salt, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("read salt: %w", err)
	}

	salt, err = cryptox.NewSalt()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO cache_meta (name, value) VALUES (?, ?)`, metaSalt, salt); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}
	return salt, nil
}

// Load returns authsdk.ErrNoSession when no access token is stored.
func (s *Store) Load(ctx context.Context) (authsdk.SessionRecord, error) {
	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return authsdk.SessionRecord{}, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil && !errors.Is(err, authsdk.ErrNoSession) {
		return authsdk.SessionRecord{}, err
	}
	return authsdk.SessionRecord{AccessToken: access, RefreshToken: refresh}, nil
}

// Save replaces both items in one transaction.
func (s *Store) Save(ctx context.Context, rec authsdk.SessionRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.put(ctx, tx, keyAccessToken, rec.AccessToken); err != nil {
			return err
		}
		if rec.RefreshToken == "" {
			_, err := tx.ExecContext(ctx, `DELETE FROM secure_items WHERE item_key = ?`, keyRefreshToken)
			return err
		}
		return s.put(ctx, tx, keyRefreshToken, rec.RefreshToken)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secure_items WHERE item_key IN (?, ?)`, keyAccessToken, keyRefreshToken)
	return err
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx, `SELECT sealed FROM secure_items WHERE item_key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", authsdk.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}

	plain, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrLocked, key)
	}
	return string(plain), nil
}

func (s *Store) put(ctx context.Context, tx *sql.Tx, key, value string) error {
	sealed, err := s.sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO secure_items (item_key, sealed, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (item_key) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
		key, sealed, s.now().UTC())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
