package courses

import (
	"context"
	"errors"
	"testing"
	"time"

	"edunova-platform/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID  int64
	courses map[int64]Course

	findByIDCalls int
	listCalls     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, courses: map[int64]Course{}}
}

func (r *fakeRepo) Insert(_ context.Context, c Course) (Course, error) {
	c.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.courses[c.ID] = c
	return c, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (Course, error) {
	r.findByIDCalls++
	c, ok := r.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (r *fakeRepo) List(_ context.Context) ([]Course, error) {
	r.listCalls++
	out := make([]Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, c Course) (Course, error) {
	existing, ok := r.courses[c.ID]
	if !ok {
		return Course{}, ErrNotFound
	}
	c.TeacherID = existing.TeacherID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.courses[c.ID] = c
	return c, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newFakeRepo()
	return NewService(repo, cache.New(rdb, time.Hour, time.Second)), repo, mr
}

func validCourse() Course {
	return Course{
		Title:       "Intro to Algebra",
		Subtitle:    "Equations from scratch",
		Description: "A first course in algebra.",
		PriceCents:  4999,
		TeacherID:   7,
	}
}

func TestGetIsReadThroughCached(t *testing.T) {
	svc, repo, mr := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, 1, repo.findByIDCalls)

	// Second read served from cache.
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.findByIDCalls)

	// TTL elapsed: falls through to the store again.
	mr.FastForward(2 * time.Hour)
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, repo.findByIDCalls)
}

func TestWriteInvalidatesCachedReads(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	// Warm both the item and list keys.
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	updated := created
	updated.Title = "Intro to Algebra II"
	_, err = svc.Update(ctx, updated)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Intro to Algebra II", got.Title)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.listCalls)
}

func TestDeleteInvalidatesAndRemoves(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWriteNotAckedWhenInvalidationFails(t *testing.T) {
	svc, repo, mr := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCourse())
	require.NoError(t, err)

	mr.Close()

	updated := created
	updated.Title = "New Title"
	_, err = svc.Update(ctx, updated)
	require.Error(t, err)
	require.True(t, errors.Is(err, cache.ErrInvalidation), "expected consistency violation, got %v", err)

	err = svc.Delete(ctx, repo.nextID-1)
	require.Error(t, err)
	require.ErrorIs(t, err, cache.ErrInvalidation)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Course)
	}{
		{"missing title", func(c *Course) { c.Title = "" }},
		{"missing subtitle", func(c *Course) { c.Subtitle = "" }},
		{"missing description", func(c *Course) { c.Description = "" }},
		{"negative price", func(c *Course) { c.PriceCents = -1 }},
		{"missing teacher", func(c *Course) { c.TeacherID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCourse()
			tc.mutate(&c)
			_, err := svc.Create(ctx, c)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestUpdateRequiresID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), validCourse())
	require.ErrorIs(t, err, ErrInvalidArgument)
}
