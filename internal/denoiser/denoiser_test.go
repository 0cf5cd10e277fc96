package denoiser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/text"
)

func testSetup(t *testing.T, words []string) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "models", "words.dict"),
		[]byte(strings.Join(words, "\n")+"\n"), 0o644))

	confPath := filepath.Join(root, "conf.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("root: "+root+"\n"), 0o644))

	cfg, err := config.Load(confPath)
	require.NoError(t, err)
	return cfg, root
}

func writeTrainingCSV(t *testing.T, root, name string) string {
	t.Helper()

	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteString("the quick brown fox jumps over the lazy dog,1\n")
		b.WriteString("this line reads like perfectly ordinary text,1\n")
		b.WriteString(fmt.Sprintf("#### %d$$$ !!!! ====,0\n", i))
	}

	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestTrainThenCleanse(t *testing.T) {
	cfg, root := testSetup(t, []string{
		"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
		"this", "line", "reads", "like", "perfectly", "ordinary", "text",
	})

	den, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer den.Close()

	require.NoError(t, den.Train([]string{writeTrainingCSV(t, root, "train.csv")}, nil))

	inputPath := filepath.Join(root, "input.txt")
	require.NoError(t, os.WriteFile(inputPath,
		[]byte("the quick brown fox\n\n@@@@ $$$$ !!!!\n"), 0o644))

	doc, err := den.Cleanse(inputPath, false)
	require.NoError(t, err)

	var grades []int
	doc.Lines(func(line *text.Line) { grades = append(grades, line.Grade) })
	require.Len(t, grades, 2)

	// Every line ends in a final class once the classifier has run.
	for _, grade := range grades {
		assert.True(t, grade == text.GradeGarbage || grade == text.GradeClean, "grade %d", grade)
	}
	assert.Equal(t, text.GradeGarbage, grades[1])
}

func TestCleanseDeterministic(t *testing.T) {
	run := func() []string {
		cfg, root := testSetup(t, []string{"alpha", "beta", "gamma"})

		den, err := New(cfg, zap.NewNop())
		require.NoError(t, err)
		defer den.Close()

		inputPath := filepath.Join(root, "in.txt")
		require.NoError(t, os.WriteFile(inputPath, []byte("alpha b3ta gamma\n"), 0o644))

		doc, err := den.Cleanse(inputPath, false)
		require.NoError(t, err)
		return doc.CleanLines()
	}

	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestGenerateModelsOnly(t *testing.T) {
	cfg, root := testSetup(t, []string{"the", "quick", "brown", "fox"})

	den, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer den.Close()

	csvPath := filepath.Join(root, "data.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("the quick brown fox,1\nthe quick brown fox,1\n"), 0o644))

	seen := 0
	require.NoError(t, den.GenerateModels([]string{csvPath}, func(string) { seen++ }))
	assert.Equal(t, 1, seen)
}
