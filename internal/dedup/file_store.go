package dedup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

const DefaultFilePath = "sent_messages.txt"

var _ Store = (*FileStore)(nil)

// FileStore is an append-only text log with one key per line.
//
// It takes no locks: two runs racing over the same file can both miss each
// other's record and send the same ticket twice. Serialize runs externally, or
// use RedisStore/GormStore when that matters.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultFilePath
	}
	return &FileStore{path: trimmed}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Seen(ctx context.Context, key domain.NotificationKey) (bool, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open dedup log: %w", err)
	}
	defer f.Close()

	target := key.String()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if strings.TrimSpace(scanner.Text()) == target {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read dedup log: %w", err)
	}

	return false, nil
}

func (s *FileStore) Record(ctx context.Context, key domain.NotificationKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dedup log: %w", err)
	}

	if _, err := f.WriteString(key.String() + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append dedup key: %w", err)
	}
	return f.Close()
}
