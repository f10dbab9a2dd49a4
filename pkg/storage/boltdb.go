package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketNamespaceSettings = []byte("namespace_settings")

// BoltStore implements Store using a single BoltDB bucket keyed by
// namespace name, standing in for the MM_NAMESPACE_SETTINGS_IDX
// secondary index against the external metadata store.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "mastermind.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNamespaceSettings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// GetSettings retrieves a namespace's settings by name.
func (s *BoltStore) GetSettings(namespace string) (*Settings, error) {
	var settings Settings
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNamespaceSettings)
		data := b.Get([]byte(namespace))
		if data == nil {
			return fmt.Errorf("namespace settings not found: %s", namespace)
		}
		return json.Unmarshal(data, &settings)
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// ListSettings returns every namespace's settings.
func (s *BoltStore) ListSettings() ([]*Settings, error) {
	var all []*Settings
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNamespaceSettings)
		return b.ForEach(func(k, v []byte) error {
			var settings Settings
			if err := json.Unmarshal(v, &settings); err != nil {
				return err
			}
			all = append(all, &settings)
			return nil
		})
	})
	return all, err
}

// PutSettings creates or replaces a namespace's settings.
func (s *BoltStore) PutSettings(settings *Settings) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNamespaceSettings)
		data, err := json.Marshal(settings)
		if err != nil {
			return err
		}
		return b.Put([]byte(settings.Namespace), data)
	})
}

// DeleteSettings removes a namespace's settings. Idempotent.
func (s *BoltStore) DeleteSettings(namespace string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNamespaceSettings)
		return b.Delete([]byte(namespace))
	})
}
