package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipUnzipRoundTrip(t *testing.T) {
	root := t.TempDir()
	workDir := filepath.Join(root, "job")
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "txt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "txt", "doc.txt"), []byte("some lines\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "meta"), []byte("x"), 0o644))

	archivePath, err := ZipDirectory(workDir)
	require.NoError(t, err)
	assert.Equal(t, workDir+Ext, archivePath)

	// The directory is consumed by the zip.
	_, err = os.Stat(workDir)
	assert.True(t, os.IsNotExist(err))

	restored, err := UnzipDirectory(archivePath)
	require.NoError(t, err)
	assert.Equal(t, workDir, restored)

	// The archive is consumed by the unzip.
	_, err = os.Stat(archivePath)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(workDir, "txt", "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "some lines\n", string(data))

	data, err = os.ReadFile(filepath.Join(workDir, "meta"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestUnzipRejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	archivePath := filepath.Join(root, "evil.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)
	writer := zip.NewWriter(out)
	entry, err := writer.Create("../escape")
	require.NoError(t, err)
	_, err = entry.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())

	_, err = UnzipDirectory(archivePath)
	assert.Error(t, err)
}
