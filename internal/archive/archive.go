// Package archive zips per-document work directories for transport
// through the queue fabric.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the archive suffix.
const Ext = ".zip"

// ZipDirectory archives a directory into sibling <dir>.zip and removes the
// directory. Returns the archive path.
func ZipDirectory(dir string) (string, error) {
	archiveName := dir + Ext

	out, err := os.Create(archiveName)
	if err != nil {
		return "", fmt.Errorf("archive: creating %s: %w", archiveName, err)
	}

	writer := zip.NewWriter(out)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			_, err := writer.Create(rel + "/")
			return err
		}

		entry, err := writer.Create(rel)
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(entry, in)
		return err
	})
	if err != nil {
		writer.Close()
		out.Close()
		return "", fmt.Errorf("archive: zipping %s: %w", dir, err)
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("archive: finishing %s: %w", archiveName, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("archive: closing %s: %w", archiveName, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("archive: cleaning %s: %w", dir, err)
	}
	return archiveName, nil
}

// UnzipDirectory extracts an archive next to itself and removes the
// archive. Returns the directory path.
func UnzipDirectory(archivePath string) (string, error) {
	dir := strings.TrimSuffix(archivePath, Ext)

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: opening %s: %w", archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		target := filepath.Join(dir, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return "", fmt.Errorf("archive: %s escapes %s", file.Name, dir)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf("archive: extracting %s: %w", file.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", fmt.Errorf("archive: extracting %s: %w", file.Name, err)
		}

		if err := extractFile(file, target); err != nil {
			return "", err
		}
	}

	if err := os.Remove(archivePath); err != nil {
		return "", fmt.Errorf("archive: removing %s: %w", archivePath, err)
	}
	return dir, nil
}

func extractFile(file *zip.File, target string) error {
	in, err := file.Open()
	if err != nil {
		return fmt.Errorf("archive: reading %s: %w", file.Name, err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("archive: writing %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("archive: extracting %s: %w", file.Name, err)
	}
	return nil
}
