// Package store persists the model artefacts as named JSON blobs in a
// bbolt bucket. Every blob carries a blake2b checksum: saving an unchanged
// structure writes nothing, and a corrupted blob fails loudly on load.
package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"
)

// Blob names of the model artefacts.
const (
	BlobDictionary  = "dictionary"
	BlobUnigrams    = "unigrams"
	BlobBigrams     = "bigrams"
	BlobCaseMap     = "case_map"
	BlobOCRKeys     = "ocr_keys"
	BlobAnagrams    = "anagrams"
	BlobTrainingSet = "training_set"
	BlobClassifier  = "classifier"
	BlobHashes      = "hashes"
)

var bucketName = []byte("models")

// ErrNotFound reports a missing blob.
var ErrNotFound = errors.New("store: blob not found")

// ErrChecksum reports a blob whose payload does not match its checksum.
var ErrChecksum = errors.New("store: blob checksum mismatch")

type envelope struct {
	Sum  string          `json:"sum"`
	Data json.RawMessage `json:"data"`
}

// Store is an open model store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store file.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the store file.
func (s *Store) Close() error { return s.db.Close() }

// Save serialises v under name. The write is skipped when the payload
// checksum equals the stored one.
func (s *Store) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", name, err)
	}

	sum := blake2b.Sum256(data)
	payload, err := json.Marshal(envelope{
		Sum:  hex.EncodeToString(sum[:]),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("store: enveloping %s: %w", name, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bytes.Equal(bucket.Get([]byte(name)), payload) {
			return nil
		}
		return bucket.Put([]byte(name), payload)
	})
}

// Load fills v from the blob stored under name.
func (s *Store) Load(name string, v any) error {
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if stored := tx.Bucket(bucketName).Get([]byte(name)); stored != nil {
			payload = append([]byte(nil), stored...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: reading %s: %w", name, err)
	}
	if payload == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("store: decoding %s: %w", name, err)
	}

	sum := blake2b.Sum256(env.Data)
	if hex.EncodeToString(sum[:]) != env.Sum {
		return fmt.Errorf("%w: %s", ErrChecksum, name)
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("store: decoding %s payload: %w", name, err)
	}
	return nil
}

// Has reports whether a blob exists.
func (s *Store) Has(name string) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketName).Get([]byte(name)) != nil
		return nil
	})
	return found, err
}
