package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"repwatch-console/constant"
	"repwatch-console/dto"
	"repwatch-console/entities"
)

type fakeStore struct {
	rep        *entities.SalesRep
	recordings []*entities.Recording
	gotStart   string
	gotEnd     string
}

func (f *fakeStore) FindRepByID(ctx context.Context, id uint) (*entities.SalesRep, error) {
	if f.rep == nil || f.rep.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rep, nil
}

func (f *fakeStore) RecordingsInRange(ctx context.Context, userID uint, start, end string) ([]*entities.Recording, error) {
	f.gotStart, f.gotEnd = start, end
	return f.recordings, nil
}

// fakeConcat concatenates the manifest's inputs textually, so tests can
// assert ordering by reading the output.
type fakeConcat struct {
	failStreamCopy bool
	failReencode   bool
	strategies     []ConcatStrategy
	manifests      []string
}

func (f *fakeConcat) Concat(ctx context.Context, manifestPath, outputPath string, strategy ConcatStrategy) error {
	f.strategies = append(f.strategies, strategy)
	f.manifests = append(f.manifests, manifestPath)

	if strategy == StrategyStreamCopy && f.failStreamCopy {
		return errors.New("splice failed")
	}
	if strategy == StrategyReencode && f.failReencode {
		// Leave a partial artifact behind, like a killed ffmpeg would.
		_ = os.WriteFile(outputPath, []byte("partial"), 0o644)
		return errors.New("reencode failed")
	}

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	var parts []string
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		parts = append(parts, string(content))
	}
	return os.WriteFile(outputPath, []byte(strings.Join(parts, "|")), 0o644)
}

func writeUpload(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func rec(id uint, name, date, clock string) *entities.Recording {
	return &entities.Recording{
		ID:       id,
		UserID:   7,
		FileName: name,
		Date:     date,
		Time:     clock,
		Type:     constant.RecordingTypeRecording,
	}
}

func newTestPipeline(t *testing.T, store *fakeStore, concat VideoConcatenator) (CombineService, string, string) {
	t.Helper()
	uploads := t.TempDir()
	output := t.TempDir()
	return NewCombineService(store, concat, uploads, output), uploads, output
}

func validRequest() dto.CombineRequest {
	return dto.CombineRequest{
		UserID:    7,
		StartDate: "2024-01-01",
		StartTime: "08:00:00",
		EndDate:   "2024-01-01",
		EndTime:   "10:00:00",
		Format:    "webm",
	}
}

func outputEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestCombineOrdersChronologically(t *testing.T) {
	store := &fakeStore{
		rep: &entities.SalesRep{ID: 7, RepID: "REP007", Name: "Dana"},
		// Deliberately shuffled: the pipeline must sort, not trust storage.
		recordings: []*entities.Recording{
			rec(3, "c.webm", "2024-01-01", "09:10:00"),
			rec(1, "a.webm", "2024-01-01", "09:00:00"),
			rec(2, "b.webm", "2024-01-01", "09:05:00"),
		},
	}
	concat := &fakeConcat{}
	svc, uploads, output := newTestPipeline(t, store, concat)
	writeUpload(t, uploads, "a.webm", "T1")
	writeUpload(t, uploads, "b.webm", "T2")
	writeUpload(t, uploads, "c.webm", "T3")

	artifact, err := svc.Combine(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(output, artifact.FileName))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != "T1|T2|T3" {
		t.Errorf("concatenation order = %q, want T1|T2|T3", got)
	}
	if artifact.Start != "2024-01-01 08:00:00" || artifact.End != "2024-01-01 10:00:00" {
		t.Errorf("artifact range = %q..%q", artifact.Start, artifact.End)
	}
	if !strings.HasPrefix(artifact.FileName, "REP007_combined_") {
		t.Errorf("artifact name %q not derived from rep business key", artifact.FileName)
	}
}

func TestCombineCleanupOnSuccess(t *testing.T) {
	store := &fakeStore{
		rep:        &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{rec(1, "a.webm", "2024-01-01", "09:00:00")},
	}
	svc, uploads, output := newTestPipeline(t, store, &fakeConcat{})
	writeUpload(t, uploads, "a.webm", "T1")

	if _, err := svc.Combine(context.Background(), validRequest()); err != nil {
		t.Fatalf("combine: %v", err)
	}

	entries := outputEntries(t, output)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one artifact, found %d entries", len(entries))
	}
	if entries[0].IsDir() {
		t.Errorf("staging directory %q survived the pipeline", entries[0].Name())
	}
}

func TestCombineCleanupOnFailure(t *testing.T) {
	store := &fakeStore{
		rep:        &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{rec(1, "a.webm", "2024-01-01", "09:00:00")},
	}
	concat := &fakeConcat{failStreamCopy: true, failReencode: true}
	svc, uploads, output := newTestPipeline(t, store, concat)
	writeUpload(t, uploads, "a.webm", "T1")

	_, err := svc.Combine(context.Background(), validRequest())
	if !errors.Is(err, ErrCombinationFailed) {
		t.Fatalf("expected ErrCombinationFailed, got %v", err)
	}

	// No staging dirs, no manifests, and the partial output is gone.
	if entries := outputEntries(t, output); len(entries) != 0 {
		t.Errorf("expected empty output dir after failure, found %d entries", len(entries))
	}
}

func TestCombineRetriesWithReencode(t *testing.T) {
	store := &fakeStore{
		rep:        &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{rec(1, "a.webm", "2024-01-01", "09:00:00")},
	}
	concat := &fakeConcat{failStreamCopy: true}
	svc, uploads, _ := newTestPipeline(t, store, concat)
	writeUpload(t, uploads, "a.webm", "T1")

	if _, err := svc.Combine(context.Background(), validRequest()); err != nil {
		t.Fatalf("combine: %v", err)
	}

	if len(concat.strategies) != 2 ||
		concat.strategies[0] != StrategyStreamCopy ||
		concat.strategies[1] != StrategyReencode {
		t.Fatalf("strategy sequence = %v, want [stream-copy reencode]", concat.strategies)
	}
	if concat.manifests[0] == concat.manifests[1] {
		t.Errorf("retry reused the first manifest %q", concat.manifests[0])
	}
}

func TestCombineEmptyRange(t *testing.T) {
	store := &fakeStore{rep: &entities.SalesRep{ID: 7, RepID: "REP007"}}
	svc, _, output := newTestPipeline(t, store, &fakeConcat{})

	_, err := svc.Combine(context.Background(), validRequest())
	if !errors.Is(err, ErrNoRecordingsInRange) {
		t.Fatalf("expected ErrNoRecordingsInRange, got %v", err)
	}
	if entries := outputEntries(t, output); len(entries) != 0 {
		t.Errorf("empty range must not write to disk, found %d entries", len(entries))
	}
	if store.gotStart != "2024-01-01 08:00:00" || store.gotEnd != "2024-01-01 10:00:00" {
		t.Errorf("queried range %q..%q", store.gotStart, store.gotEnd)
	}
}

func TestCombineSkipsUnresolvableFiles(t *testing.T) {
	store := &fakeStore{
		rep: &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{
			rec(1, "gone.webm", "2024-01-01", "09:00:00"),
			rec(2, "here.webm", "2024-01-01", "09:05:00"),
		},
	}
	svc, uploads, output := newTestPipeline(t, store, &fakeConcat{})
	writeUpload(t, uploads, "here.webm", "T2")

	artifact, err := svc.Combine(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(output, artifact.FileName))
	if string(got) != "T2" {
		t.Errorf("artifact content %q, want just the resolvable input", got)
	}
}

func TestCombineNoResolvableFiles(t *testing.T) {
	store := &fakeStore{
		rep:        &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{rec(1, "gone.webm", "2024-01-01", "09:00:00")},
	}
	svc, _, _ := newTestPipeline(t, store, &fakeConcat{})

	if _, err := svc.Combine(context.Background(), validRequest()); !errors.Is(err, ErrNoResolvableFiles) {
		t.Fatalf("expected ErrNoResolvableFiles, got %v", err)
	}
}

func TestCombineSuffixMatchesPrefixedFiles(t *testing.T) {
	store := &fakeStore{
		rep:        &entities.SalesRep{ID: 7, RepID: "REP007"},
		recordings: []*entities.Recording{rec(1, "rec_0900.webm", "2024-01-01", "09:00:00")},
	}
	svc, uploads, output := newTestPipeline(t, store, &fakeConcat{})
	// The capture client prefixed the name with a device identifier.
	writeUpload(t, uploads, "device42_rec_0900.webm", "T1")

	artifact, err := svc.Combine(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(output, artifact.FileName))
	if string(got) != "T1" {
		t.Errorf("artifact content %q, want T1", got)
	}
}

func TestCombineUserNotFound(t *testing.T) {
	svc, _, _ := newTestPipeline(t, &fakeStore{}, &fakeConcat{})

	if _, err := svc.Combine(context.Background(), validRequest()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCombineInvalidRange(t *testing.T) {
	svc, _, _ := newTestPipeline(t, &fakeStore{rep: &entities.SalesRep{ID: 7}}, &fakeConcat{})

	cases := []struct {
		name string
		mut  func(*dto.CombineRequest)
	}{
		{"missing start date", func(r *dto.CombineRequest) { r.StartDate = "" }},
		{"missing end time", func(r *dto.CombineRequest) { r.EndTime = "" }},
		{"garbage date", func(r *dto.CombineRequest) { r.StartDate = "January 1st" }},
		{"start after end", func(r *dto.CombineRequest) {
			r.StartDate, r.EndDate = "2024-02-01", "2024-01-01"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mut(&req)
			if _, err := svc.Combine(context.Background(), req); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestCombineFormatPolicy(t *testing.T) {
	if _, err := parseFormat("avi"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("unknown format must be rejected, got %v", err)
	}
	format, err := parseFormat("")
	if err != nil || format != constant.OutputFormatWebM {
		t.Errorf("empty format should default to webm, got %v %v", format, err)
	}
	format, err = parseFormat("MP4")
	if err != nil || format != constant.OutputFormatMP4 {
		t.Errorf("format should be case-insensitive, got %v %v", format, err)
	}
}
