package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	created := time.UnixMilli(time.Now().UnixMilli())
	require.NoError(t, repo.Save(ctx, sampleRun("run-1", created)))

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "travel", got.Scenario)
	assert.Equal(t, "first", got.Selector)
	assert.Equal(t, "sha256", got.Encoder)
	assert.InDelta(t, 4.2, got.TotalIDS, 1e-12)
	assert.Equal(t, 2, got.StepCount)
	assert.True(t, created.Equal(got.CreatedAt))
	require.Len(t, got.Steps, 2)
	assert.Equal(t, RunStep{T: 2, Action: "compare hotel prices", Goal: "book_flight", Delta: 0.6, TotalIDS: 1.11}, got.Steps[1])
}

func TestRunGetMissing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.RunRepo().Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunSaveRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.RunRepo().Save(context.Background(), &Run{}))
}

func TestRunSaveDuplicateRollsBack(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRun("dup", time.Now())))
	assert.Error(t, repo.Save(ctx, sampleRun("dup", time.Now())))

	got, err := repo.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got.Steps, 2)
}

func TestRunListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		r := sampleRun(id, base.Add(time.Duration(i)*time.Minute))
		if id == "b" {
			r.Scenario = "other"
		}
		require.NoError(t, repo.Save(ctx, r))
	}

	runs, err := repo.List(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "a", runs[2].ID)
	assert.Empty(t, runs[0].Steps)
	assert.Equal(t, 2, runs[0].StepCount)

	runs, err = repo.List(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "c", runs[0].ID)

	runs, err = repo.List(ctx, QueryOpts{Scenario: "other"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "b", runs[0].ID)

	runs, err = repo.List(ctx, QueryOpts{From: base.Add(30 * time.Second)})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	repo := s.RunRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRun("gone", time.Now())))
	require.NoError(t, repo.Delete(ctx, "gone"))
	require.NoError(t, repo.Delete(ctx, "gone"))

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM run_steps WHERE run_id = 'gone'`).Scan(&n))
	assert.Zero(t, n)
}
