// Package config loads the application's YAML configuration. Values are
// addressed with slash paths ("dirs/models_root"), list elements with a
// '#' suffix ("machines/master#0"). A .env file and the process
// environment override the Redis address and the root directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lab/denoiser/internal/inline"
)

// Environment override keys.
const (
	envRedisAddr = "DENOISER_REDIS_ADDR"
	envRoot      = "DENOISER_ROOT"
)

// Config is the loaded application configuration.
type Config struct {
	raw map[string]any
}

// Load reads the YAML file. A .env file in the working directory is
// folded into the environment first, and known override variables are
// applied after parsing.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; explicit environment always wins.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg := &Config{raw: raw}

	if addr := os.Getenv(envRedisAddr); addr != "" {
		cfg.set("redis", "addr", addr)
	}
	if root := os.Getenv(envRoot); root != "" {
		cfg.raw["root"] = root
	}

	return cfg, nil
}

func (c *Config) set(section, key string, value any) {
	sub, ok := c.raw[section].(map[string]any)
	if !ok {
		sub = map[string]any{}
		c.raw[section] = sub
	}
	sub[key] = value
}

// Get resolves a slash path into the configuration tree.
func (c *Config) Get(key string) (any, error) {
	var current any = c.raw

	for _, part := range strings.Split(key, "/") {
		name := part
		index := -1
		if head, tail, found := strings.Cut(part, "#"); found {
			name = head
			i, err := strconv.Atoi(tail)
			if err != nil {
				return nil, fmt.Errorf("config: bad list index in %q", key)
			}
			index = i
		}

		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config: key %q not present", key)
		}
		value, ok := node[name]
		if !ok {
			return nil, fmt.Errorf("config: key %q not present", key)
		}

		if index >= 0 {
			list, ok := value.([]any)
			if !ok || index >= len(list) {
				return nil, fmt.Errorf("config: key %q not present", key)
			}
			value = list[index]
		}
		current = value
	}

	return current, nil
}

// GetString resolves a slash path to a string.
func (c *Config) GetString(key string) (string, error) {
	value, err := c.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("config: key %q is not a string", key)
	}
	return s, nil
}

// GetInt resolves a slash path to an integer.
func (c *Config) GetInt(key string) (int, error) {
	value, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("config: key %q is not an integer", key)
}

func (c *Config) stringOr(key, fallback string) string {
	if value, err := c.GetString(key); err == nil {
		return value
	}
	return fallback
}

func (c *Config) intOr(key string, fallback int) int {
	if value, err := c.GetInt(key); err == nil {
		return value
	}
	return fallback
}

func (c *Config) floatOr(key string, fallback float64) float64 {
	value, err := c.Get(key)
	if err != nil {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// Root is the application root directory.
func (c *Config) Root() string { return c.stringOr("root", ".") }

// ModelStorePath locates the bbolt model store.
func (c *Config) ModelStorePath() string {
	return filepath.Join(c.Root(), c.stringOr("models/store", "models/denoiser.db"))
}

// WordListPath locates the external word list.
func (c *Config) WordListPath() string {
	return filepath.Join(c.Root(), c.stringOr("models/word_list", "models/words.dict"))
}

// InputDir is the master's watch directory.
func (c *Config) InputDir() string {
	return filepath.Join(c.Root(), c.stringOr("dirs/input", "input"))
}

// OutputDir receives finished jobs.
func (c *Config) OutputDir() string {
	return filepath.Join(c.Root(), c.stringOr("dirs/output", "output"))
}

// TmpDir holds per-document work directories.
func (c *Config) TmpDir() string {
	return filepath.Join(c.Root(), c.stringOr("dirs/tmp", "tmp"))
}

// RedisAddr is the queue server address.
func (c *Config) RedisAddr() string { return c.stringOr("redis/addr", "127.0.0.1:6379") }

// RedisDB selects the queue database.
func (c *Config) RedisDB() int { return c.intOr("redis/db", 0) }

// MaxTries bounds how often a failing job is retried.
func (c *Config) MaxTries() int { return c.intOr("commands/tries", 3) }

// StatusAddr is the bind address of the master's status API.
func (c *Config) StatusAddr() string { return c.stringOr("server/addr", "127.0.0.1:8692") }

// Quantities assembles the tunable correction constants, falling back to
// the documented defaults.
func (c *Config) Quantities() inline.Quantities {
	q := inline.DefaultQuantities()
	q.UnigramPruneRate = c.floatOr("quantities/unigram_prune_rate", q.UnigramPruneRate)
	q.BigramPruneRate = c.floatOr("quantities/bigram_prune_rate", q.BigramPruneRate)
	q.AnagramEditCeiling = c.intOr("quantities/anagram_edit_ceiling", q.AnagramEditCeiling)
	q.OCREditCeiling = c.intOr("quantities/ocr_edit_ceiling", q.OCREditCeiling)
	q.OCRWeightDelta = c.intOr("quantities/ocr_weight_delta", q.OCRWeightDelta)
	q.OCRTruncationCap = c.intOr("quantities/ocr_truncation_cap", q.OCRTruncationCap)
	q.OCRSplitThreshold = c.intOr("quantities/ocr_split_threshold", q.OCRSplitThreshold)
	q.ConfidenceThreshold = c.floatOr("quantities/confidence_threshold", q.ConfidenceThreshold)
	q.LogRatioCutoff = c.floatOr("quantities/log_ratio_cutoff", q.LogRatioCutoff)
	return q
}
