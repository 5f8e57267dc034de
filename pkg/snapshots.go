package litex

import (
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/vilterp/litex/pkg/lang"
)

// SnapshotStore keeps named environment snapshots in a bolt file, one bucket
// per session. Nothing is ever loaded back into a live scope.
type SnapshotStore struct {
	boltDB *bolt.DB
}

type SavedSnapshot struct {
	Name      string         `json:"name"`
	SessionID string         `json:"session_id"`
	SavedAt   time.Time      `json:"saved_at"`
	Env       *lang.Snapshot `json:"env"`
}

func OpenSnapshotStore(dataFile string) (*SnapshotStore, error) {
	boltDB, err := bolt.Open(dataFile, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dataFile)
	}
	return &SnapshotStore{boltDB: boltDB}, nil
}

func (s *SnapshotStore) Save(sessionID string, name string, env *lang.Snapshot) error {
	encoded, err := json.Marshal(&SavedSnapshot{
		Name:      name,
		SessionID: sessionID,
		SavedAt:   time.Now().UTC(),
		Env:       env,
	})
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(sessionID))
		if err != nil {
			return errors.Wrapf(err, "creating bucket for session %s", sessionID)
		}
		return bucket.Put([]byte(name), encoded)
	})
}

func (s *SnapshotStore) Load(sessionID string, name string) (*SavedSnapshot, error) {
	var encoded []byte
	if err := s.boltDB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionID))
		if bucket == nil {
			return nil
		}
		// bolt's slices are only valid inside the transaction
		if value := bucket.Get([]byte(name)); value != nil {
			encoded = append([]byte{}, value...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, &noSuchSnapshot{SessionID: sessionID, Name: name}
	}
	saved := &SavedSnapshot{}
	if err := json.Unmarshal(encoded, saved); err != nil {
		return nil, errors.Wrapf(err, "decoding snapshot %s", name)
	}
	return saved, nil
}

// List returns the names saved for a session, in key order.
func (s *SnapshotStore) List(sessionID string) ([]string, error) {
	names := []string{}
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(key, _ []byte) error {
			names = append(names, string(key))
			return nil
		})
	})
	return names, err
}

func (s *SnapshotStore) Close() error {
	return s.boltDB.Close()
}
