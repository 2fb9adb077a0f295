package session

import (
	"encoding/json"
	"os"

	"github.com/dulceria/storefront/internal/models"
)

// Record is the persisted credential record: the identity snapshot and the
// bearer token, mirrored to disk on every successful login. It is a cache;
// the backend's profile endpoint stays authoritative at bootstrap time.
type Record struct {
	User  *models.Identity `json:"user"`
	Token string           `json:"token"`
}

// CredentialStore persists the credential record between runs.
type CredentialStore interface {
	// Load reads the stored record. A missing record is (nil, nil).
	Load() (*Record, error)
	// Save writes the record, replacing any previous one.
	Save(*Record) error
	// Clear erases the record. Clearing an absent record is a no-op.
	Clear() error
}

// FileStore keeps the credential record in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Load() (*Record, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var rec Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, err
	}
	if rec.User == nil || rec.Token == "" {
		// A torn or half-written record is as good as none.
		return nil, nil
	}
	return &rec, nil
}

func (fs *FileStore) Save(rec *Record) error {
	f, err := os.Create(fs.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(rec)
}

func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
