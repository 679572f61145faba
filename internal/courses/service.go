package courses

import (
	"context"
	"fmt"
	"strconv"

	"edunova-platform/internal/cache"
)

const cachePrefix = "courses:"

// Service mediates course reads through the cache and invalidates the whole
// courses prefix on every write before reporting success. There is exactly
// one list key today, but prefix deletion keeps filtered/paginated variants
// safe to add without new invalidation call sites.
type Service struct {
	repo  Repo
	cache *cache.Cache
}

func NewService(repo Repo, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

func (s *Service) Get(ctx context.Context, id int64) (Course, error) {
	key := cache.Key("courses", "id", strconv.FormatInt(id, 10))

	var c Course
	if s.cache.Get(ctx, key, &c) {
		return c, nil
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	s.cache.Set(ctx, key, c, s.cache.DefaultTTL())
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Course, error) {
	key := cache.Key("courses", "all")

	var cs []Course
	if s.cache.Get(ctx, key, &cs) {
		return cs, nil
	}

	cs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, cs, s.cache.DefaultTTL())
	return cs, nil
}

func (s *Service) Create(ctx context.Context, course Course) (Course, error) {
	if err := validate(course); err != nil {
		return Course{}, err
	}
	if course.TeacherID == 0 {
		return Course{}, ErrInvalidArgument
	}

	created, err := s.repo.Insert(ctx, course)
	if err != nil {
		return Course{}, err
	}
	if err := s.invalidate(); err != nil {
		return Course{}, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, course Course) (Course, error) {
	if course.ID == 0 {
		return Course{}, ErrInvalidArgument
	}
	if err := validate(course); err != nil {
		return Course{}, err
	}

	updated, err := s.repo.Update(ctx, course)
	if err != nil {
		return Course{}, err
	}
	if err := s.invalidate(); err != nil {
		return Course{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.invalidate()
}

func validate(c Course) error {
	if c.Title == "" || c.Subtitle == "" || c.Description == "" {
		return ErrInvalidArgument
	}
	if c.PriceCents < 0 {
		return ErrInvalidArgument
	}
	return nil
}

// invalidate is tied to an already-committed write, so it runs on a fresh
// context: a client disconnect must not abort a half-done invalidation.
func (s *Service) invalidate() error {
	if err := s.cache.DeleteByPrefix(context.Background(), cachePrefix); err != nil {
		return fmt.Errorf("courses write not acknowledged: %w", err)
	}
	return nil
}
