package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aseptimu/shortlink/internal/app/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store описывает хранилище ссылок.
//
// Каждая пишущая операция атомарна: проверка уникальности и запись
// выполняются одним шагом. Время берётся из candidate.CreatedAt.
type Store interface {
	// Issue возвращает живую запись для candidate.OriginalURL либо
	// сохраняет candidate. Если код занят, возвращает ErrCodeCollision.
	Issue(ctx context.Context, candidate Link) (Outcome, error)
	// ClaimAlias закрепляет candidate.ShortCode за candidate.OriginalURL.
	// Если код занят другим URL, возвращает ErrAliasTaken.
	ClaimAlias(ctx context.Context, candidate Link) (Outcome, error)
	Resolve(ctx context.Context, code string, now time.Time) (Link, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// URLShortener создаёт короткие ссылки.
type URLShortener interface {
	Shorten(ctx context.Context, originalURL, alias string) (Outcome, error)
}

// ExpiredPurger удаляет просроченные записи.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Options задаёт параметры сервиса.
type Options struct {
	LinkTTL    time.Duration
	CodeLength int
	MaxRetries int
}

// CodeGenerator возвращает случайный код заданной длины.
type CodeGenerator func(length int) (string, error)

// ShortLinkService реализует Shorten и Resolve поверх Store.
type ShortLinkService struct {
	store    Store
	opts     Options
	logger   *zap.SugaredLogger
	now      func() time.Time
	generate CodeGenerator
	newID    func() string
}

// NewShortLinkService создаёт сервис. Нулевые поля opts заменяются значениями по умолчанию.
func NewShortLinkService(store Store, opts Options, logger *zap.SugaredLogger) *ShortLinkService {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = DefaultLinkTTL
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = 7
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	return &ShortLinkService{
		store:    store,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		generate: utils.RandomString,
		newID:    uuid.NewString,
	}
}

// Shorten возвращает короткий код для originalURL.
//
// С alias код закрепляется за URL (новая запись или замена кода существующей).
// Без alias возвращается уже выданный код или генерируется новый;
// при коллизии генерация повторяется не более MaxRetries раз.
func (s *ShortLinkService) Shorten(ctx context.Context, originalURL, alias string) (Outcome, error) {
	originalURL = SanitizeInput(originalURL)
	if err := ValidateURL(originalURL); err != nil {
		return Outcome{}, err
	}

	now := s.now().UTC()

	if alias != "" {
		if err := ValidateAlias(alias); err != nil {
			return Outcome{}, err
		}
		out, err := s.store.ClaimAlias(ctx, s.newLink(originalURL, alias, true, now))
		if err != nil {
			return Outcome{}, err
		}
		s.logger.Debugw("Alias claimed", "alias", alias, "url", originalURL, "kind", out.Kind.String())
		return out, nil
	}

	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		code, err := s.generate(s.opts.CodeLength)
		if err != nil {
			return Outcome{}, fmt.Errorf("generate short code: %w", err)
		}

		out, err := s.store.Issue(ctx, s.newLink(originalURL, code, false, now))
		if errors.Is(err, ErrCodeCollision) {
			s.logger.Debugw("Short code collision, retrying", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return Outcome{}, err
		}
		s.logger.Debugw("Short code issued", "code", out.Link.ShortCode, "url", originalURL, "kind", out.Kind.String())
		return out, nil
	}

	s.logger.Errorw("Short code retries exhausted", "url", originalURL, "attempts", s.opts.MaxRetries)
	return Outcome{}, ErrCodeExhausted
}

// Resolve возвращает исходный URL для живой записи с кодом code.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrNotFound
	}
	link, err := s.store.Resolve(ctx, code, s.now().UTC())
	if err != nil {
		return "", err
	}
	return link.OriginalURL, nil
}

// PurgeExpired физически удаляет записи с истёкшим сроком.
func (s *ShortLinkService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now().UTC())
}

func (s *ShortLinkService) newLink(originalURL, code string, custom bool, now time.Time) Link {
	return Link{
		ID:            s.newID(),
		OriginalURL:   originalURL,
		ShortCode:     code,
		IsCustomAlias: custom,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.opts.LinkTTL),
	}
}
