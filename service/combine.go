package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"repwatch-console/constant"
	"repwatch-console/dto"
	"repwatch-console/entities"
	"repwatch-console/pkg/safepath"
)

// Artifact references a generated combined video. The result of the pipeline
// is a file, not a database row.
type Artifact struct {
	FileName string
	Rep      *entities.SalesRep
	Start    string
	End      string
}

type CombineService interface {
	Combine(ctx context.Context, req dto.CombineRequest) (*Artifact, error)
}

// CombineStore is the slice of the repository the pipeline reads. The full
// ConsoleRepository satisfies it; tests substitute a fake.
type CombineStore interface {
	FindRepByID(ctx context.Context, id uint) (*entities.SalesRep, error)
	RecordingsInRange(ctx context.Context, userID uint, start, end string) ([]*entities.Recording, error)
}

type combineService struct {
	repo       CombineStore
	concat     VideoConcatenator
	uploadsDir string
	outputDir  string
	now        func() time.Time
}

func NewCombineService(repo CombineStore, concat VideoConcatenator, uploadsDir, outputDir string) CombineService {
	return &combineService{
		repo:       repo,
		concat:     concat,
		uploadsDir: uploadsDir,
		outputDir:  outputDir,
		now:        time.Now,
	}
}

func (s *combineService) Combine(ctx context.Context, req dto.CombineRequest) (*Artifact, error) {
	start, end, err := parseRange(req)
	if err != nil {
		return nil, err
	}

	format, err := parseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	rep, err := s.repo.FindRepByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	recordings, err := s.repo.RecordingsInRange(ctx, rep.ID, start, end)
	if err != nil {
		return nil, err
	}
	if len(recordings) == 0 {
		return nil, ErrNoRecordingsInRange
	}

	// The query already orders by date, time; re-sort so concatenation order
	// never depends on what storage happened to return.
	sort.SliceStable(recordings, func(i, j int) bool {
		return recordings[i].Date+" "+recordings[i].Time < recordings[j].Date+" "+recordings[j].Time
	})

	sources := s.resolveFiles(ctx, recordings)
	if len(sources) == 0 {
		return nil, ErrNoResolvableFiles
	}

	stagingDir := filepath.Join(s.outputDir, "staging-"+uuid.NewString())
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	// Cleanup must run on every path out of this function.
	defer os.RemoveAll(stagingDir)

	staged, err := stageInputs(sources, stagingDir)
	if err != nil {
		return nil, err
	}

	outputName := fmt.Sprintf("%s_combined_%s_%s.%s",
		rep.RepID,
		s.now().Format("20060102_150405"),
		uuid.NewString()[:8],
		format,
	)
	outputPath := filepath.Join(s.outputDir, outputName)

	manifest := filepath.Join(stagingDir, "concat_list.txt")
	if err := writeManifest(manifest, staged); err != nil {
		return nil, err
	}

	err = s.concat.Concat(ctx, manifest, outputPath, StrategyStreamCopy)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("stream-copy concat failed, retrying with re-encode")

		// The single retry in the system: a distinct manifest with absolute
		// paths, and a full re-encode to splice heterogeneous codecs.
		absStaged, absErr := absolutePaths(staged)
		if absErr != nil {
			return nil, errors.Join(ErrCombinationFailed, absErr)
		}
		manifestAbs := filepath.Join(stagingDir, "concat_list_abs.txt")
		if werr := writeManifest(manifestAbs, absStaged); werr != nil {
			return nil, errors.Join(ErrCombinationFailed, werr)
		}

		if err = s.concat.Concat(ctx, manifestAbs, outputPath, StrategyReencode); err != nil {
			if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
				zerolog.Ctx(ctx).Warn().Err(rmErr).Str("output", outputPath).Msg("failed to remove partial output")
			}
			return nil, errors.Join(ErrCombinationFailed, err)
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("rep_id", rep.RepID).
		Str("output", outputName).
		Int("inputs", len(staged)).
		Msg("combined video generated")

	return &Artifact{
		FileName: outputName,
		Rep:      rep,
		Start:    start,
		End:      end,
	}, nil
}

// resolveFiles maps recording rows to on-disk files: exact name first, then a
// suffix scan of the uploads root. Rows without a file are skipped; a file
// that vanished after the query counts as unresolved, not fatal.
func (s *combineService) resolveFiles(ctx context.Context, recordings []*entities.Recording) []string {
	var sources []string
	for _, rec := range recordings {
		resolved, err := safepath.ResolveExisting(s.uploadsDir, rec.FileName, true)
		if err != nil {
			zerolog.Ctx(ctx).Warn().
				Uint("recording_id", rec.ID).
				Str("file_name", rec.FileName).
				Msg("recording file not resolvable, skipping")
			continue
		}
		sources = append(sources, resolved)
	}
	return sources
}

// stageInputs copies the sources into the staging directory under strictly
// sequential zero-padded names so concatenation order is independent of the
// original filenames.
func stageInputs(sources []string, stagingDir string) ([]string, error) {
	staged := make([]string, 0, len(sources))
	for i, src := range sources {
		name := fmt.Sprintf("input_%03d%s", i, filepath.Ext(src))
		dst := filepath.Join(stagingDir, name)
		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("stage input %d: %w", i, err)
		}
		staged = append(staged, dst)
	}
	return staged, nil
}

func writeManifest(path string, files []string) error {
	var b strings.Builder
	for _, f := range files {
		escaped := strings.ReplaceAll(f, "'", "'\\''")
		b.WriteString(fmt.Sprintf("file '%s'\n", escaped))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func absolutePaths(paths []string) ([]string, error) {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		abs = append(abs, a)
	}
	return abs, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// parseRange combines the four date/time components into two zero-padded
// "YYYY-MM-DD HH:MM:SS" strings. Future dates are allowed.
func parseRange(req dto.CombineRequest) (string, string, error) {
	if req.StartDate == "" || req.StartTime == "" || req.EndDate == "" || req.EndTime == "" {
		return "", "", ErrInvalidRange
	}
	start, err := parseDateTime(req.StartDate, req.StartTime)
	if err != nil {
		return "", "", ErrInvalidRange
	}
	end, err := parseDateTime(req.EndDate, req.EndTime)
	if err != nil {
		return "", "", ErrInvalidRange
	}
	if start.After(end) {
		return "", "", ErrInvalidRange
	}
	return start.Format("2006-01-02 15:04:05"), end.Format("2006-01-02 15:04:05"), nil
}

func parseDateTime(date, clock string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

func parseFormat(raw string) (constant.OutputFormat, error) {
	if raw == "" {
		return constant.OutputFormatWebM, nil
	}
	format := constant.OutputFormat(strings.ToLower(raw))
	if !format.Valid() {
		return "", ErrInvalidFormat
	}
	return format, nil
}
