package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"repwatch-console/config"
	"repwatch-console/pkg/safepath"
)

type BackupInfo struct {
	FileName  string
	Size      int64
	CreatedAt time.Time
}

type BackupService interface {
	Create(ctx context.Context) (*BackupInfo, error)
	List(ctx context.Context) ([]BackupInfo, error)
	Restore(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	ResolvePath(name string) (string, error)
}

type backupService struct {
	cfg        config.Backup
	backupsDir string
	storage    *minio.Client
	bucket     string
}

// NewBackupService shells out to mysqldump/mysql for dump and restore. When
// storage is non-nil, finished dumps are also copied offsite.
func NewBackupService(cfg config.Backup, backupsDir string, storage *minio.Client, bucket string) BackupService {
	return &backupService{
		cfg:        cfg,
		backupsDir: backupsDir,
		storage:    storage,
		bucket:     bucket,
	}
}

func (s *backupService) Create(ctx context.Context) (*BackupInfo, error) {
	if err := os.MkdirAll(s.backupsDir, 0o755); err != nil {
		return nil, errors.Join(ErrBackupFailed, err)
	}

	fileName := fmt.Sprintf("backup-%s-%s.sql", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	filePath := filepath.Join(s.backupsDir, fileName)

	out, err := os.Create(filePath)
	if err != nil {
		return nil, errors.Join(ErrBackupFailed, err)
	}

	cmd := exec.CommandContext(ctx, s.cfg.MysqldumpBin, s.connArgs()...)
	cmd.Stdout = out
	runErr := cmd.Run()
	closeErr := out.Close()
	if runErr != nil || closeErr != nil {
		_ = os.Remove(filePath)
		zerolog.Ctx(ctx).Error().AnErr("run", runErr).AnErr("close", closeErr).Msg("mysqldump failed")
		return nil, errors.Join(ErrBackupFailed, runErr, closeErr)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.Join(ErrBackupFailed, err)
	}

	if s.storage != nil {
		// Offsite copy failure is logged, not fatal; the local dump exists.
		if _, err := s.storage.FPutObject(ctx, s.bucket, "backups/"+fileName, filePath, minio.PutObjectOptions{
			ContentType: "application/sql",
		}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("file", fileName).Msg("offsite backup copy failed")
		}
	}

	zerolog.Ctx(ctx).Info().Str("file", fileName).Int64("size", info.Size()).Msg("backup created")
	return &BackupInfo{FileName: fileName, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

func (s *backupService) List(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			FileName:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

func (s *backupService) Restore(ctx context.Context, name string) error {
	path, err := s.ResolvePath(name)
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrRestoreFailed, err)
	}
	defer in.Close()

	cmd := exec.CommandContext(ctx, s.cfg.MysqlBin, s.connArgs()...)
	cmd.Stdin = in
	if output, err := cmd.CombinedOutput(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("output", string(output)).Msg("mysql restore failed")
		return errors.Join(ErrRestoreFailed, err)
	}

	zerolog.Ctx(ctx).Info().Str("file", name).Msg("backup restored")
	return nil
}

func (s *backupService) Delete(ctx context.Context, name string) error {
	path, err := s.ResolvePath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *backupService) ResolvePath(name string) (string, error) {
	return safepath.ResolveExisting(s.backupsDir, name, false)
}

func (s *backupService) connArgs() []string {
	return []string{
		"-h", s.cfg.Host,
		"-P", strconv.Itoa(s.cfg.Port),
		"-u", s.cfg.User,
		"--password=" + s.cfg.Password,
		s.cfg.Database,
	}
}
