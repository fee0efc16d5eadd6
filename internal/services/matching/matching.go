// Package services содержит тонкие read-only запросы подбора:
// наставники и ученики по предмету. Выдача кэшируется в Redis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/skillswap/internal/models"
)

const cacheTTL = 5 * time.Minute

// UserRepository определяет методы выборки карточек пользователей.
type UserRepository interface {
	// ListMentors возвращает наставников, опционально по предмету.
	ListMentors(ctx context.Context, subject string) ([]*models.UserSummary, error)
	// ListLearners возвращает учеников, опционально по предмету.
	ListLearners(ctx context.Context, subject string) ([]*models.UserSummary, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// MatchingService реализует запросы подбора с кэшированием.
type MatchingService struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// NewMatchingService создает новый экземпляр MatchingService.
func NewMatchingService(repo UserRepository, cache Cache, log *slog.Logger) *MatchingService {
	return &MatchingService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// FindMentors возвращает карточки наставников, используя кеш или репозиторий.
func (s *MatchingService) FindMentors(ctx context.Context, subject string) ([]*models.UserSummary, error) {
	return s.find(ctx, "mentors", subject, s.repo.ListMentors)
}

// FindLearners возвращает карточки учеников, используя кеш или репозиторий.
func (s *MatchingService) FindLearners(ctx context.Context, subject string) ([]*models.UserSummary, error) {
	return s.find(ctx, "learners", subject, s.repo.ListLearners)
}

func (s *MatchingService) find(ctx context.Context, kind, subject string,
	load func(ctx context.Context, subject string) ([]*models.UserSummary, error)) ([]*models.UserSummary, error) {

	subject = strings.TrimSpace(subject)
	cacheKey := fmt.Sprintf("matching:%s:%s", kind, strings.ToLower(subject))

	var cached []*models.UserSummary
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read matching cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	result, err := load(ctx, subject)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache matching result", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}
