package transcode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"zeusmaker/internal/fileutil"
	"zeusmaker/internal/logging"
	"zeusmaker/internal/services"
	"zeusmaker/internal/staging"
)

// Merger joins converted segments into the final output with the concat
// demuxer. Streams are copied, never re-encoded.
type Merger struct {
	Binary string
	Logger *slog.Logger
}

// ManifestPath returns the concat list written next to finalOutput.
func ManifestPath(finalOutput string) string {
	stem := strings.TrimSuffix(filepath.Base(finalOutput), filepath.Ext(finalOutput))
	return filepath.Join(filepath.Dir(finalOutput), stem+staging.ManifestSuffix)
}

// Manifest renders the concat list for segments in the order given.
func Manifest(segments []string) (string, error) {
	var b strings.Builder
	for _, segment := range segments {
		abs, err := filepath.Abs(segment)
		if err != nil {
			return "", err
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}

// Merge writes finalOutput from segments. A single segment already at
// finalOutput is left untouched.
func (m *Merger) Merge(ctx context.Context, segments []string, finalOutput string) error {
	logger := m.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	switch len(segments) {
	case 0:
		return services.Wrap(services.ErrMerge, "merge", "validate", "no segments to merge", nil)
	case 1:
		if filepath.Clean(segments[0]) == filepath.Clean(finalOutput) {
			return nil
		}
		if err := fileutil.MoveFile(segments[0], finalOutput); err != nil {
			return services.Wrap(services.ErrMerge, "merge", "move segment", finalOutput, err)
		}
		return nil
	}

	manifest, err := Manifest(segments)
	if err != nil {
		return services.Wrap(services.ErrMerge, "merge", "resolve segment paths", "", err)
	}
	manifestPath := ManifestPath(finalOutput)
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		return services.Wrap(services.ErrMerge, "merge", "write manifest", manifestPath, err)
	}
	defer func() {
		if err := fileutil.RemoveIfExists(manifestPath); err != nil {
			logger.Debug("manifest cleanup failed", logging.String("path", manifestPath), logging.Error(err))
		}
	}()

	args := []string{"-hide_banner", "-nostdin", "-f", "concat", "-safe", "0", "-i", manifestPath, "-c", "copy", "-y", finalOutput}
	cmd := exec.CommandContext(ctx, m.Binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(
			services.ErrMerge,
			"merge",
			"concat",
			fmt.Sprintf("ffmpeg %s: %s", exitStatus(err), strings.TrimSpace(stderr.String())),
			err,
		)
	}
	logger.Debug("segments concatenated",
		logging.Int(logging.FieldSegmentCount, len(segments)),
		logging.String("output", finalOutput),
	)
	return nil
}
