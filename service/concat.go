package service

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ConcatStrategy string

const (
	// StrategyStreamCopy concatenates without re-encoding. Fast, but splicing
	// fails when the sources carry heterogeneous codecs.
	StrategyStreamCopy ConcatStrategy = "stream-copy"
	// StrategyReencode decodes and re-encodes every input. Slow, works on
	// mixed sources.
	StrategyReencode ConcatStrategy = "reencode"
)

// VideoConcatenator turns a concat manifest into a single output file.
// Injected into the pipeline so tests can substitute a fake.
type VideoConcatenator interface {
	Concat(ctx context.Context, manifestPath, outputPath string, strategy ConcatStrategy) error
}

type FFmpegConcatenator struct {
	Bin     string
	Timeout time.Duration
}

func NewFFmpegConcatenator(bin string, timeout time.Duration) *FFmpegConcatenator {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegConcatenator{Bin: bin, Timeout: timeout}
}

func (f *FFmpegConcatenator) Concat(ctx context.Context, manifestPath, outputPath string, strategy ConcatStrategy) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
	}
	switch strategy {
	case StrategyReencode:
		args = append(args, reencodeArgs(outputPath)...)
	default:
		args = append(args, "-c", "copy")
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".mp4") {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, "-y", outputPath)

	zerolog.Ctx(ctx).Info().
		Str("strategy", string(strategy)).
		Strs("ffmpeg_args", args).
		Msg("invoking ffmpeg concat")

	cmd := exec.CommandContext(ctx, f.Bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("strategy", string(strategy)).
			Str("ffmpeg_output", string(output)).
			Msg("ffmpeg concat failed")
		return fmt.Errorf("ffmpeg %s concat: %w", strategy, err)
	}
	return nil
}

func reencodeArgs(outputPath string) []string {
	if strings.EqualFold(filepath.Ext(outputPath), ".webm") {
		return []string{
			"-c:v", "libvpx-vp9",
			"-b:v", "0",
			"-crf", "33",
			"-c:a", "libopus",
		}
	}
	return []string{
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
	}
}
