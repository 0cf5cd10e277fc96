// Package queue is the Redis fabric between the master and its workers:
// list queues for commands and results, and a hash holding in-flight
// archives.
package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Queue names of the fabric.
const (
	CommandQueue  = "commands"
	FinishedQueue = "finished"
)

// ErrEmpty reports a pop from an empty queue.
var ErrEmpty = errors.New("queue: empty")

// Manager wraps one named Redis list.
type Manager struct {
	rdb  *redis.Client
	name string
}

// NewManager attaches to a named queue.
func NewManager(rdb *redis.Client, name string) *Manager {
	return &Manager{rdb: rdb, name: name}
}

// Push appends a payload.
func (m *Manager) Push(ctx context.Context, payload []byte) error {
	if err := m.rdb.RPush(ctx, m.name, payload).Err(); err != nil {
		return fmt.Errorf("queue: pushing to %s: %w", m.name, err)
	}
	return nil
}

// Pop takes the oldest payload, ErrEmpty when there is none.
func (m *Manager) Pop(ctx context.Context) ([]byte, error) {
	payload, err := m.rdb.LPop(ctx, m.name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("queue: popping from %s: %w", m.name, err)
	}
	return payload, nil
}

// Len is the queue depth.
func (m *Manager) Len(ctx context.Context) (int64, error) {
	length, err := m.rdb.LLen(ctx, m.name).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: measuring %s: %w", m.name, err)
	}
	return length, nil
}

// Job is one unit of queued work: the archive to process, the index of the
// next command step and how often the job already failed.
type Job struct {
	Step     int    `json:"command"`
	Filename string `json:"filename"`
	Tries    int    `json:"tries"`
}

// NewJob starts a job at its first step.
func NewJob(filename string) *Job {
	return &Job{Filename: filename}
}

// ParseJob rebuilds a job from its queued form.
func ParseJob(payload []byte) (*Job, error) {
	job := &Job{}
	if err := json.Unmarshal(payload, job); err != nil {
		return nil, fmt.Errorf("queue: parsing job: %w", err)
	}
	return job, nil
}

// Encode serialises the job for queueing.
func (j *Job) Encode() ([]byte, error) {
	payload, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("queue: encoding job: %w", err)
	}
	return payload, nil
}

// Done reports a job past its last step.
func (j *Job) Done() bool { return j.Step == -1 }

// fileHash is the Redis hash holding in-flight archives.
const fileHash = "fman"

// FileStore moves archives between machines through Redis.
type FileStore struct {
	rdb *redis.Client
}

// NewFileStore attaches to the shared archive hash.
func NewFileStore(rdb *redis.Client) *FileStore {
	return &FileStore{rdb: rdb}
}

// Store uploads a local file under its own path and removes it.
func (f *FileStore) Store(ctx context.Context, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("queue: reading %s: %w", filename, err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if err := f.rdb.HSet(ctx, fileHash, filename, encoded).Err(); err != nil {
		return fmt.Errorf("queue: storing %s: %w", filename, err)
	}
	return os.Remove(filename)
}

// Retrieve downloads a stored file back to its path.
func (f *FileStore) Retrieve(ctx context.Context, filename string) error {
	encoded, err := f.rdb.HGet(ctx, fileHash, filename).Result()
	if err != nil {
		return fmt.Errorf("queue: retrieving %s: %w", filename, err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("queue: decoding %s: %w", filename, err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// Delete drops a stored file.
func (f *FileStore) Delete(ctx context.Context, filename string) error {
	if err := f.rdb.HDel(ctx, fileHash, filename).Err(); err != nil {
		return fmt.Errorf("queue: deleting %s: %w", filename, err)
	}
	return nil
}
