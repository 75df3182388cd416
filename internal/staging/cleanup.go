package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zeusmaker/internal/logging"
)

const (
	// ChunkDirSuffix names the per-task directory holding segment files.
	ChunkDirSuffix = "_chunks"
	// ManifestSuffix names the concat list written next to a merged output.
	ManifestSuffix = ".filelist.txt"

	chunkFileMarker = "_chunk_"
)

// ChunkDir returns the segment directory for a task whose output stem is stem.
func ChunkDir(outputDir, stem string) string {
	return filepath.Join(outputDir, stem+ChunkDirSuffix)
}

// CleanStaleResult contains the outcome of a stale leftover cleanup.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes chunk directories and concat manifests in outputDir that
// are older than maxAge. A maxAge of zero removes every leftover; callers
// must hold the output directory lock so no live batch owns them. Chunk
// directories holding anything other than segment files are left alone.
func CleanStale(ctx context.Context, outputDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return result
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: outputDir, Error: err})
		}
		return result
	}

	names := entryNames(entries)
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !isLeftover(outputDir, entry, names) {
			continue
		}
		path := filepath.Join(outputDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if maxAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale conversion leftover", "staging_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale conversion leftover",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// ListLeftovers returns the chunk directories and manifests CleanStale would
// consider, with their sizes.
func ListLeftovers(outputDir string) ([]DirInfo, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := entryNames(entries)
	var leftovers []DirInfo
	for _, entry := range entries {
		if !isLeftover(outputDir, entry, names) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(outputDir, entry.Name())
		size, _ := dirSize(path)
		leftovers = append(leftovers, DirInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return leftovers, nil
}

// DirInfo describes one leftover.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// isLeftover reports whether entry was written by an interrupted batch. A
// chunk directory must hold at least one segment file and nothing else. A
// manifest counts only when its stem also names an output or chunk directory
// in the same listing.
func isLeftover(outputDir string, entry os.DirEntry, names map[string]bool) bool {
	name := entry.Name()
	if !entry.IsDir() {
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, ManifestSuffix) {
			return false
		}
		stem := strings.TrimSuffix(name, ManifestSuffix)
		return stem != "" && (names[stem+".ogv"] || names[stem+".ogg"] || names[stem+ChunkDirSuffix])
	}
	if !strings.HasSuffix(name, ChunkDirSuffix) {
		return false
	}
	children, err := os.ReadDir(filepath.Join(outputDir, name))
	if err != nil || len(children) == 0 {
		return false
	}
	for _, child := range children {
		if child.IsDir() || !strings.Contains(child.Name(), chunkFileMarker) {
			return false
		}
	}
	return true
}

func entryNames(entries []os.DirEntry) map[string]bool {
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	return names
}

// dirSize calculates the total size of a file or directory tree.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
