// Command denoiser is the pipeline entry point: model training and
// document cleaning locally, master and worker modes against the queue
// fabric.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/denoiser"
	"github.com/lab/denoiser/internal/logging"
	"github.com/lab/denoiser/internal/server"
	"github.com/lab/denoiser/internal/worker"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "denoiser:", err)
		os.Exit(1)
	}
}

func usage() error {
	fmt.Fprintln(os.Stderr, `usage: denoiser <command> [flags]

commands:
  train   -config conf.yaml file.csv [file.csv ...]
  models  -config conf.yaml file.csv [file.csv ...]
  clean   -config conf.yaml [-csv] file
  master  -config conf.yaml
  worker  -config conf.yaml`)
	return fmt.Errorf("missing or unknown command")
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}

	command, rest := args[0], args[1:]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "conf.yaml", "configuration file")
	verbose := flags.Bool("v", false, "verbose logging")
	isCSV := flags.Bool("csv", false, "input carries expected labels")
	if err := flags.Parse(rest); err != nil {
		return err
	}

	log, err := logging.New(*verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	switch command {
	case "train":
		return runTrain(cfg, log, flags.Args(), true)
	case "models":
		return runTrain(cfg, log, flags.Args(), false)
	case "clean":
		return runClean(cfg, log, flags.Args(), *isCSV)
	case "master":
		return runMaster(cfg, log)
	case "worker":
		return runWorker(cfg, log)
	default:
		return usage()
	}
}

// runTrain ingests the dataset, with the classifier fit on top when train
// is set, drawing one progress bar over the files.
func runTrain(cfg *config.Config, log *zap.Logger, paths []string, train bool) error {
	if len(paths) == 0 {
		return fmt.Errorf("no training files given")
	}

	den, err := denoiser.New(cfg, log)
	if err != nil {
		return err
	}
	defer den.Close()

	progress := mpb.New(mpb.WithWidth(48))
	bar := progress.AddBar(int64(len(paths)),
		mpb.PrependDecorators(decor.Name("ingesting"), decor.CountersNoUnit(" %d/%d")),
		mpb.AppendDecorators(decor.Percentage()),
	)
	tick := func(string) { bar.Increment() }

	if train {
		err = den.Train(paths, tick)
	} else {
		err = den.GenerateModels(paths, tick)
	}
	progress.Wait()
	return err
}

// runClean cleans one document and writes the classified renderings next
// to it.
func runClean(cfg *config.Config, log *zap.Logger, paths []string, isCSV bool) error {
	if len(paths) != 1 {
		return fmt.Errorf("clean expects exactly one file")
	}

	den, err := denoiser.New(cfg, log)
	if err != nil {
		return err
	}
	defer den.Close()

	doc, err := den.Cleanse(paths[0], isCSV)
	if err != nil {
		return err
	}

	base := paths[0]
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

	if doc.Labelled {
		eval := doc.Evaluate()
		fmt.Printf("precision %.3f  recall %.3f  f1 %.3f\n", eval.Precision, eval.Recall, eval.F1)
	}
	return nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}

func runMaster(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), DB: cfg.RedisDB()})
	defer rdb.Close()

	go func() {
		if err := server.New(rdb, log).Run(cfg.StatusAddr()); err != nil {
			log.Error("status API stopped", zap.Error(err))
		}
	}()

	return worker.NewMaster(cfg, rdb, log).Run(ctx)
}

func runWorker(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), DB: cfg.RedisDB()})
	defer rdb.Close()

	den, err := denoiser.New(cfg, log)
	if err != nil {
		return err
	}
	defer den.Close()

	steps := []worker.Command{worker.NewDenoiseCommand(den)}
	return worker.NewWorker(cfg, rdb, steps, log).Run(ctx)
}
