package store

import (
	"context"
	"sync"
	"time"

	"github.com/aseptimu/shortlink/internal/app/service"
)

// InMemoryStore хранит ссылки в памяти процесса.
// Оба индекса меняются под одной блокировкой, поэтому проверка и запись атомарны.
type InMemoryStore struct {
	mu     sync.RWMutex
	byCode map[string]*service.Link
	byURL  map[string]*service.Link
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byCode: make(map[string]*service.Link),
		byURL:  make(map[string]*service.Link),
	}
}

func (m *InMemoryStore) Issue(_ context.Context, candidate service.Link) (service.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := candidate.CreatedAt
	m.evictExpired(candidate.OriginalURL, candidate.ShortCode, now)

	if existing, ok := m.byURL[candidate.OriginalURL]; ok {
		return service.Outcome{Link: *existing, Kind: service.KindExisting}, nil
	}
	if _, ok := m.byCode[candidate.ShortCode]; ok {
		return service.Outcome{}, service.ErrCodeCollision
	}

	m.put(candidate)
	return service.Outcome{Link: candidate, Kind: service.KindCreated}, nil
}

func (m *InMemoryStore) ClaimAlias(_ context.Context, candidate service.Link) (service.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := candidate.CreatedAt
	m.evictExpired(candidate.OriginalURL, candidate.ShortCode, now)

	if holder, ok := m.byCode[candidate.ShortCode]; ok && holder.OriginalURL != candidate.OriginalURL {
		return service.Outcome{}, service.ErrAliasTaken
	}

	if existing, ok := m.byURL[candidate.OriginalURL]; ok {
		previous := existing.ShortCode
		delete(m.byCode, previous)
		existing.ShortCode = candidate.ShortCode
		existing.IsCustomAlias = true
		m.byCode[existing.ShortCode] = existing
		return service.Outcome{Link: *existing, Kind: service.KindUpdatedExisting, PreviousCode: previous}, nil
	}

	m.put(candidate)
	return service.Outcome{Link: candidate, Kind: service.KindCreated}, nil
}

func (m *InMemoryStore) Resolve(_ context.Context, code string, now time.Time) (service.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.byCode[code]
	if !ok || link.Expired(now) {
		return service.Link{}, service.ErrNotFound
	}
	return *link, nil
}

func (m *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for _, link := range m.byCode {
		if link.Expired(now) {
			m.remove(link)
			removed++
		}
	}
	return removed, nil
}

// Snapshot возвращает копии всех записей, включая просроченные.
func (m *InMemoryStore) Snapshot() []service.Link {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]service.Link, 0, len(m.byCode))
	for _, link := range m.byCode {
		links = append(links, *link)
	}
	return links
}

// Load добавляет записи без проверок. Используется при старте.
func (m *InMemoryStore) Load(links []service.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range links {
		m.put(link)
	}
}

// clone возвращает независимую копию хранилища.
func (m *InMemoryStore) clone() *InMemoryStore {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := NewInMemoryStore()
	for _, link := range m.byCode {
		c.put(*link)
	}
	return c
}

// replace подменяет содержимое m содержимым other. other после этого не используется.
func (m *InMemoryStore) replace(other *InMemoryStore) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byCode, m.byURL = other.byCode, other.byURL
}

func (m *InMemoryStore) put(link service.Link) {
	l := link
	m.byCode[l.ShortCode] = &l
	m.byURL[l.OriginalURL] = &l
}

// evictExpired удаляет просроченные записи, которые держат url или code.
func (m *InMemoryStore) evictExpired(url, code string, now time.Time) {
	if link, ok := m.byURL[url]; ok && link.Expired(now) {
		m.remove(link)
	}
	if link, ok := m.byCode[code]; ok && link.Expired(now) {
		m.remove(link)
	}
}

func (m *InMemoryStore) remove(link *service.Link) {
	if m.byCode[link.ShortCode] == link {
		delete(m.byCode, link.ShortCode)
	}
	if m.byURL[link.OriginalURL] == link {
		delete(m.byURL, link.OriginalURL)
	}
}
