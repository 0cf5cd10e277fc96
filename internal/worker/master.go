package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/archive"
	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/logging"
	"github.com/lab/denoiser/internal/queue"
)

const masterScanInterval = time.Minute

// Master watches the input directory, packages new documents as jobs and
// collects finished archives into the output directory.
type Master struct {
	cfg      *config.Config
	commands *queue.Manager
	finished *queue.Manager
	files    *queue.FileStore
	log      *logging.QueueLogger

	processed map[string]struct{}
}

// NewMaster wires a master over the queue fabric.
func NewMaster(cfg *config.Config, rdb *redis.Client, log *zap.Logger) *Master {
	return &Master{
		cfg:       cfg,
		commands:  queue.NewManager(rdb, queue.CommandQueue),
		finished:  queue.NewManager(rdb, queue.FinishedQueue),
		files:     queue.NewFileStore(rdb),
		log:       logging.NewQueueLogger("master", log, rdb),
		processed: make(map[string]struct{}),
	}
}

// Run loops until the context ends, scanning and collecting once per
// interval.
func (m *Master) Run(ctx context.Context) error {
	m.log.Info(ctx, "master running")
	ticker := time.NewTicker(masterScanInterval)
	defer ticker.Stop()

	for {
		if err := m.scanInput(ctx); err != nil {
			m.log.Error(ctx, "input scan failed: "+err.Error())
		}
		if err := m.collectFinished(ctx); err != nil {
			m.log.Error(ctx, "collect failed: "+err.Error())
		}

		select {
		case <-ctx.Done():
			m.log.Info(ctx, "master stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// scanInput packages every new input file into a work directory, archives
// it into the file store and queues a job for it.
func (m *Master) scanInput(ctx context.Context) error {
	entries, err := os.ReadDir(m.cfg.InputDir())
	if err != nil {
		return fmt.Errorf("worker: reading input dir: %w", err)
	}

	queued := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, done := m.processed[entry.Name()]; done {
			continue
		}

		fullPath := filepath.Join(m.cfg.InputDir(), entry.Name())
		workDir, err := m.createWorkDirectory(fullPath)
		if err != nil {
			m.log.Error(ctx, "packaging "+entry.Name()+" failed: "+err.Error())
			m.processed[entry.Name()] = struct{}{}
			continue
		}

		archivePath, err := archive.ZipDirectory(workDir)
		if err != nil {
			return err
		}
		if err := m.files.Store(ctx, archivePath); err != nil {
			return err
		}

		payload, err := queue.NewJob(archivePath).Encode()
		if err != nil {
			return err
		}
		if err := m.commands.Push(ctx, payload); err != nil {
			return err
		}

		m.processed[entry.Name()] = struct{}{}
		queued++
	}

	if queued > 0 {
		m.log.Info(ctx, fmt.Sprintf("%d file(s) queued", queued))
	}
	return nil
}

// createWorkDirectory lays out tmp/<checksum>/txt holding the input file.
func (m *Master) createWorkDirectory(inputPath string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("worker: reading %s: %w", inputPath, err)
	}
	sum := sha256.Sum256(data)

	workDir := filepath.Join(m.cfg.TmpDir(), hex.EncodeToString(sum[:]))
	txtDir := filepath.Join(workDir, "txt")
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		return "", fmt.Errorf("worker: creating %s: %w", txtDir, err)
	}

	target := filepath.Join(txtDir, filepath.Base(inputPath))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("worker: staging %s: %w", target, err)
	}
	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("worker: consuming %s: %w", inputPath, err)
	}
	return workDir, nil
}

// collectFinished retrieves every finished archive into the output
// directory and drops it from the file store.
func (m *Master) collectFinished(ctx context.Context) error {
	for {
		payload, err := m.finished.Pop(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			return nil
		}
		if err != nil {
			return err
		}

		filename := string(payload)
		if err := m.files.Retrieve(ctx, filename); err != nil {
			return err
		}

		if err := os.MkdirAll(m.cfg.OutputDir(), 0o755); err != nil {
			return fmt.Errorf("worker: creating output dir: %w", err)
		}
		target := filepath.Join(m.cfg.OutputDir(), filepath.Base(filename))
		if err := os.Rename(filename, target); err != nil {
			return fmt.Errorf("worker: moving %s: %w", filename, err)
		}

		if err := m.files.Delete(ctx, filename); err != nil {
			return err
		}
		m.log.Info(ctx, "collected "+filepath.Base(filename))
	}
}
