package securestore

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mediashare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/cryptox"
	"github.com/dmitrijs2005/mediashare/internal/dbx"
)

const (
	saltKey      = "kdf_salt"
	verifierKey  = "kdf_verifier"
	secretPrefix = "secret:"
	saltSize     = 32
)

// SQLiteStore is a TokenStore backed by the metadata table.
type SQLiteStore struct {
	repo metadata.Repository

	mu  sync.RWMutex
	key []byte
}

var _ TokenStore = (*SQLiteStore)(nil)

// NewSQLiteStore unlocks the store with passphrase. On a fresh database a
// salt and verifier are generated and saved in one transaction; otherwise
// the derived key must match the saved verifier or ErrWrongPassphrase is
// returned.
func NewSQLiteStore(ctx context.Context, db *sql.DB, passphrase []byte) (*SQLiteStore, error) {
	var key []byte

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		salt, found, err := repo.Get(ctx, saltKey)
		if err != nil {
			return err
		}

		if !found {
			salt = common.GenerateRandByteArray(saltSize)
			key = cryptox.DeriveMasterKey(passphrase, salt)
			if err := repo.Set(ctx, saltKey, salt); err != nil {
				return err
			}
			return repo.Set(ctx, verifierKey, cryptox.MakeVerifier(key))
		}

		saved, _, err := repo.Get(ctx, verifierKey)
		if err != nil {
			return err
		}

		candidate := cryptox.DeriveMasterKey(passphrase, salt)
		if subtle.ConstantTimeCompare(saved, cryptox.MakeVerifier(candidate)) == 0 {
			common.WipeByteArray(candidate)
			return ErrWrongPassphrase
		}
		key = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{repo: metadata.NewSQLiteRepository(db), key: key}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := s.repo.Get(ctx, secretPrefix+key)
	if err != nil || !found {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return "", false, ErrClosed
	}

	plain, err := cryptox.OpenSecret(sealed, s.key)
	if err != nil {
		return "", false, fmt.Errorf("open secret %q: %w", key, err)
	}
	return string(plain), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	s.mu.RLock()
	if s.key == nil {
		s.mu.RUnlock()
		return ErrClosed
	}
	sealed, err := cryptox.SealSecret([]byte(value), s.key)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("seal secret %q: %w", key, err)
	}
	return s.repo.Set(ctx, secretPrefix+key, sealed)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, secretPrefix+key)
}

// Close wipes the derived key. The database handle is owned by the caller.
func (s *SQLiteStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	common.WipeByteArray(s.key)
	s.key = nil
}
