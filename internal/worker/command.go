// Package worker runs the distributed side of the pipeline: the master
// feeding the queues and the workers draining them.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lab/denoiser/internal/archive"
	"github.com/lab/denoiser/internal/denoiser"
	"github.com/lab/denoiser/internal/queue"
)

// Command is one step of a job: it receives the unzipped work directory
// and transforms it in place.
type Command interface {
	Name() string
	Execute(ctx context.Context, workDir string) error
}

// DenoiseCommand cleans the single text file of a work directory and
// writes the classified line files next to it.
type DenoiseCommand struct {
	den *denoiser.Denoiser
}

// NewDenoiseCommand wraps a denoiser as a job step.
func NewDenoiseCommand(den *denoiser.Denoiser) *DenoiseCommand {
	return &DenoiseCommand{den: den}
}

// Name identifies the step in configuration and logs.
func (c *DenoiseCommand) Name() string { return "denoise" }

// Execute locates the work directory's text file, cleans it and writes the
// clean, garbage and unclassified renderings.
func (c *DenoiseCommand) Execute(_ context.Context, workDir string) error {
	txtDir := filepath.Join(workDir, "txt")
	entries, err := os.ReadDir(txtDir)
	if err != nil {
		return fmt.Errorf("worker: reading %s: %w", txtDir, err)
	}

	var txtFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			txtFiles = append(txtFiles, filepath.Join(txtDir, entry.Name()))
		}
	}
	if len(txtFiles) != 1 {
		return fmt.Errorf("worker: %s holds %d text files, want one", txtDir, len(txtFiles))
	}

	doc, err := c.den.Cleanse(txtFiles[0], false)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(txtFiles[0], ".txt")
	if err := writeLines(base+".clean.txt", doc.CleanLines()); err != nil {
		return err
	}
	if err := writeLines(base+".grbge.txt", doc.GarbageLines()); err != nil {
		return err
	}
	if unclassified := doc.UnclassifiedLines(); len(unclassified) > 0 {
		if err := writeLines(base+".unclss.txt", unclassified); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("worker: writing %s: %w", path, err)
	}
	return nil
}

// runJob retrieves a job's archive, applies its next command and stores
// the archive back.
func runJob(ctx context.Context, job *queue.Job, commands []Command, files *queue.FileStore) error {
	if job.Step < 0 || job.Step >= len(commands) {
		return fmt.Errorf("worker: job step %d outside the command list", job.Step)
	}

	if err := files.Retrieve(ctx, job.Filename); err != nil {
		return err
	}

	workDir, err := archive.UnzipDirectory(job.Filename)
	if err != nil {
		return err
	}

	execErr := commands[job.Step].Execute(ctx, workDir)

	zipped, err := archive.ZipDirectory(workDir)
	if err != nil {
		return err
	}
	if err := files.Store(ctx, zipped); err != nil {
		return err
	}

	if execErr != nil {
		job.Tries++
		return execErr
	}

	job.Step++
	if job.Step >= len(commands) {
		job.Step = -1
		job.Tries = 0
	}
	return nil
}
