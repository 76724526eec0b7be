package headerstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// manifestSchemaVersion tags the shape of the bbolt-backed manifest record
// below, following the SchemaVersionV1 convention in node/store/manifest.go.
const manifestSchemaVersion = 1

var manifestBucket = []byte("headerstore_manifest")

// manifestRecord is a crash-consistency aid, not the source of truth: the
// header log (headers.dat) is authoritative for chain shape per spec §4.5,
// and Init always replays it in full. checkManifestConsistency in store.go
// reads the last record back at Init and compares it against the log
// actually on disk, so a log that shrank behind the store's back between
// runs (e.g. truncated by an external tool) is caught before replay
// commits to it, instead of silently rebuilding a shorter chain.
type manifestRecord struct {
	SchemaVersion uint32 `json:"schema_version"`
	Network       string `json:"network"`
	Height        int32  `json:"height"`
	BestHash      string `json:"best_hash"`
	FileSize      int64  `json:"file_size"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

// manifestDB is a thin bbolt wrapper, grounded on node/store/db.go's
// Open/bucket-provisioning shape. Init opens it on every run and fails if
// the database cannot be opened or its record cannot be read; a database
// with no record yet (first run) is not an error.
type manifestDB struct {
	db *bolt.DB
}

func openManifestDB(dataDir string) (*manifestDB, error) {
	dir := filepath.Join(dataDir, "headerstore")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("headerstore: create manifest directory: %w", err)
	}
	path := filepath.Join(dir, "manifest.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("headerstore: open manifest db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(manifestBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("headerstore: create manifest bucket: %w", err)
	}
	return &manifestDB{db: db}, nil
}

func (m *manifestDB) close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *manifestDB) read() (manifestRecord, bool, error) {
	var rec manifestRecord
	found := false
	err := m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(manifestBucket).Get([]byte("current"))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	return rec, found, err
}

func (m *manifestDB) write(rec manifestRecord) error {
	rec.SchemaVersion = manifestSchemaVersion
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(manifestBucket).Put([]byte("current"), raw)
	})
}
