package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/denoiser"
)

func testDenoiser(t *testing.T) *denoiser.Denoiser {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "models", "words.dict"),
		[]byte("plain\nwords\nacross\nthis\nline\n"), 0o644))

	confPath := filepath.Join(root, "conf.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("root: "+root+"\n"), 0o644))
	cfg, err := config.Load(confPath)
	require.NoError(t, err)

	den, err := denoiser.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { den.Close() })
	return den
}

func TestDenoiseCommandWritesClassifiedFiles(t *testing.T) {
	den := testDenoiser(t)
	command := NewDenoiseCommand(den)

	workDir := t.TempDir()
	txtDir := filepath.Join(workDir, "txt")
	require.NoError(t, os.MkdirAll(txtDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(txtDir, "doc.txt"),
		[]byte("plain words across this line\n\n@@@@ #### $$$$\n"), 0o644))

	require.NoError(t, command.Execute(context.Background(), workDir))

	clean, err := os.ReadFile(filepath.Join(txtDir, "doc.clean.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(clean), "plain words across this line")

	garbage, err := os.ReadFile(filepath.Join(txtDir, "doc.grbge.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(garbage), "@@@@")
}

func TestDenoiseCommandRequiresOneTextFile(t *testing.T) {
	den := testDenoiser(t)
	command := NewDenoiseCommand(den)

	workDir := t.TempDir()
	txtDir := filepath.Join(workDir, "txt")
	require.NoError(t, os.MkdirAll(txtDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(txtDir, "a.txt"), []byte("x words\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(txtDir, "b.txt"), []byte("y words\n"), 0o644))

	err := command.Execute(context.Background(), workDir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "text files"))
}
