package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aseptimu/shortlink/internal/app/service"
	"go.uber.org/zap"
)

// FileStore - InMemoryStore с сохранением в файл (одна JSON-запись на строку).
// Изменение применяется к копии, копия пишется в файл и только после
// успешной записи становится видна читателям.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	mem      *InMemoryStore
	logger   *zap.SugaredLogger
}

// NewFileStore читает filePath, если он существует, и пропускает просроченные записи.
func NewFileStore(filePath string, logger *zap.SugaredLogger) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		mem:      NewInMemoryStore(),
		logger:   logger,
	}
	if err := fs.loadFromFile(time.Now().UTC()); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) loadFromFile(now time.Time) error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open storage file: %w", err)
	}
	defer file.Close()

	var links []service.Link
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		var link service.Link
		if err := json.Unmarshal(scanner.Bytes(), &link); err != nil {
			fs.logger.Warnw("Skipping malformed storage line", "file", fs.filePath, "line", line, "error", err)
			continue
		}
		if link.Expired(now) {
			continue
		}
		links = append(links, link)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read storage file: %w", err)
	}

	fs.mem.Load(links)
	fs.logger.Debugw("Storage file loaded", "file", fs.filePath, "records", len(links))
	return nil
}

// rewriteFile пишет links во временный файл и переименовывает его.
func (fs *FileStore) rewriteFile(links []service.Link) error {
	tmp, err := os.CreateTemp(filepath.Dir(fs.filePath), filepath.Base(fs.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	for _, link := range links {
		if err := encoder.Encode(link); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fs.filePath)
}

// commit сохраняет next в файл и делает его текущим состоянием.
// При ошибке записи текущее состояние не меняется.
func (fs *FileStore) commit(op string, next *InMemoryStore) error {
	if err := fs.rewriteFile(next.Snapshot()); err != nil {
		fs.logger.Errorw("Failed to write storage file", "file", fs.filePath, "op", op, "error", err)
		return service.NewStorageError(op, err)
	}
	fs.mem.replace(next)
	return nil
}

func (fs *FileStore) Issue(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.mem.clone()
	out, err := next.Issue(ctx, candidate)
	if err != nil || out.Kind == service.KindExisting {
		return out, err
	}
	if err := fs.commit("issue", next); err != nil {
		return service.Outcome{}, err
	}
	return out, nil
}

func (fs *FileStore) ClaimAlias(ctx context.Context, candidate service.Link) (service.Outcome, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.mem.clone()
	out, err := next.ClaimAlias(ctx, candidate)
	if err != nil {
		return out, err
	}
	if err := fs.commit("claim alias", next); err != nil {
		return service.Outcome{}, err
	}
	return out, nil
}

func (fs *FileStore) Resolve(ctx context.Context, code string, now time.Time) (service.Link, error) {
	return fs.mem.Resolve(ctx, code, now)
}

func (fs *FileStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.mem.clone()
	removed, err := next.DeleteExpired(ctx, now)
	if err != nil || removed == 0 {
		return removed, err
	}
	if err := fs.commit("delete expired", next); err != nil {
		return 0, err
	}
	return removed, nil
}
