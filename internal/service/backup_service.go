package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sims-go-api/internal/dto"
)

const (
	backupFilePrefix = "backup_"
	backupFileSuffix = ".sql"
	backupTimeLayout = "2006-01-02_15-04-05"
)

// Dumper produces a database dump at the given path. The concrete
// implementation decides how; the service never builds shell strings.
type Dumper interface {
	Dump(ctx context.Context, path string) error
}

// ExecDumper shells out to a dump utility (pg_dump) with an argument array.
type ExecDumper struct {
	Command     string
	DatabaseURL string
}

func (d ExecDumper) Dump(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, d.Command, "--dbname", d.DatabaseURL, "--file", path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("dump command failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

// BackupService creates and lists database backup artifacts. Backups land in a
// directory outside the served tree; only filename and size are ever exposed.
type BackupService interface {
	Run(ctx context.Context) (dto.BackupFileInfo, error)
	List() ([]dto.BackupFileInfo, error)
	Strategy() []dto.BackupStrategyItem
}

type backupService struct {
	dumper Dumper
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

// NewBackupService constructs the backup service.
func NewBackupService(dumper Dumper, dir string, logger zerolog.Logger) BackupService {
	return &backupService{
		dumper: dumper,
		dir:    dir,
		logger: logger.With().Str("component", "backup_service").Logger(),
		now:    time.Now,
	}
}

// Run writes a timestamped dump file into the backup directory.
func (s *backupService) Run(ctx context.Context) (dto.BackupFileInfo, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return dto.BackupFileInfo{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := backupFilePrefix + s.now().Format(backupTimeLayout) + backupFileSuffix
	path := filepath.Join(s.dir, name)

	if err := s.dumper.Dump(ctx, path); err != nil {
		return dto.BackupFileInfo{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return dto.BackupFileInfo{}, fmt.Errorf("backup file missing after dump: %w", err)
	}

	s.logger.Info().Str("file", name).Int64("bytes", info.Size()).Msg("backup created")

	return dto.BackupFileInfo{Name: name, SizeKB: sizeKB(info.Size())}, nil
}

// List returns existing backup artifacts, newest first.
func (s *backupService) List() ([]dto.BackupFileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []dto.BackupFileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]dto.BackupFileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupFilePrefix) || !strings.HasSuffix(name, backupFileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, dto.BackupFileInfo{Name: name, SizeKB: sizeKB(info.Size())})
	}

	// Timestamped names sort chronologically, so reverse lexical order is newest first.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })

	return backups, nil
}

// Strategy documents the backup procedures shown on the admin page.
func (s *backupService) Strategy() []dto.BackupStrategyItem {
	return []dto.BackupStrategyItem{
		{Strategy: "Daily Automated Backups", Details: "Scheduled at 2:00 AM via cron using pg_dump"},
		{Strategy: "Retention Policy", Details: "7 daily backups, 4 weekly backups, 12 monthly backups"},
		{Strategy: "Storage Location", Details: "Outside the served tree plus an offsite copy"},
		{Strategy: "Recovery Testing", Details: "Monthly restore tests to verify backup integrity"},
		{Strategy: "Recovery Command", Details: "psql <database> < backup_file.sql"},
	}
}

func sizeKB(bytes int64) float64 {
	return float64(bytes) / 1024
}
