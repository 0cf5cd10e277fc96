package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/logging"
	"github.com/lab/denoiser/internal/queue"
)

const (
	workerPollInterval  = time.Second
	heartbeatInterval   = 15 * time.Second
	heartbeatExpiration = time.Minute

	// HeartbeatHash is the Redis hash carrying worker heartbeats.
	HeartbeatHash = "workers"
)

// Heartbeat is a worker's periodic liveness report.
type Heartbeat struct {
	UID        string  `json:"uid"`
	CPUPercent float64 `json:"cpu"`
	MemPercent float64 `json:"mem"`
	JobsDone   int     `json:"jobs_done"`
	Timestamp  int64   `json:"ts"`
}

// Worker drains the command queue, running each job's next step and
// requeueing until the job finishes or exhausts its tries.
type Worker struct {
	uid      string
	cfg      *config.Config
	rdb      *redis.Client
	commands *queue.Manager
	finished *queue.Manager
	files    *queue.FileStore
	steps    []Command
	log      *logging.QueueLogger

	jobsDone int
}

// NewWorker wires a worker over the queue fabric.
func NewWorker(cfg *config.Config, rdb *redis.Client, steps []Command, log *zap.Logger) *Worker {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}
	uid := fmt.Sprintf("%s::%d", hostname, os.Getpid())

	return &Worker{
		uid:      uid,
		cfg:      cfg,
		rdb:      rdb,
		commands: queue.NewManager(rdb, queue.CommandQueue),
		finished: queue.NewManager(rdb, queue.FinishedQueue),
		files:    queue.NewFileStore(rdb),
		steps:    steps,
		log:      logging.NewQueueLogger(uid, log, rdb),
	}
}

// Run loops until the context ends, heartbeating between jobs.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info(ctx, "worker running")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	w.publishHeartbeat(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "worker stopped")
			return ctx.Err()
		case <-heartbeat.C:
			w.publishHeartbeat(ctx)
		default:
		}

		payload, err := w.commands.Pop(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			select {
			case <-ctx.Done():
				w.log.Info(ctx, "worker stopped")
				return ctx.Err()
			case <-time.After(workerPollInterval):
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := w.process(ctx, payload); err != nil {
			w.log.Error(ctx, "job failed: "+err.Error())
		}
	}
}

func (w *Worker) process(ctx context.Context, payload []byte) error {
	job, err := queue.ParseJob(payload)
	if err != nil {
		return err
	}

	execErr := runJob(ctx, job, w.steps, w.files)
	if execErr != nil && job.Tries >= w.cfg.MaxTries() {
		w.log.Error(ctx, "dropping job after "+fmt.Sprint(job.Tries)+" tries: "+job.Filename)
		return execErr
	}

	if job.Done() {
		w.jobsDone++
		w.log.Info(ctx, "job done: "+job.Filename)
		return w.finished.Push(ctx, []byte(job.Filename))
	}

	encoded, err := job.Encode()
	if err != nil {
		return err
	}
	if err := w.commands.Push(ctx, encoded); err != nil {
		return err
	}
	return execErr
}

// publishHeartbeat reports cpu and memory pressure so the monitor can show
// the fleet at a glance.
func (w *Worker) publishHeartbeat(ctx context.Context) {
	beat := Heartbeat{
		UID:       w.uid,
		JobsDone:  w.jobsDone,
		Timestamp: time.Now().Unix(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		beat.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		beat.MemPercent = vm.UsedPercent
	}

	payload, err := json.Marshal(beat)
	if err != nil {
		return
	}
	w.rdb.HSet(ctx, HeartbeatHash, w.uid, payload)
	w.rdb.Expire(ctx, HeartbeatHash, heartbeatExpiration)
}
