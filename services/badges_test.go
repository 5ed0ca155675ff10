package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/storynest/storynest/models"
)

func TestLongestDailyStreak(t *testing.T) {
	set := func(days ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(days))
		for _, d := range days {
			m[d] = struct{}{}
		}
		return m
	}

	cases := []struct {
		name string
		days map[string]struct{}
		want int
	}{
		{"empty", set(), 0},
		{"single day", set("2025-03-01"), 1},
		{"gap breaks run", set("2025-01-01", "2025-01-02", "2025-01-03", "2025-01-05"), 3},
		{"run after gap wins", set("2025-01-01", "2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06"), 4},
		{"no consecutive days", set("2025-01-01", "2025-01-10", "2025-02-01"), 1},
		{"month boundary", set("2025-01-31", "2025-02-01"), 2},
		{"year boundary", set("2024-12-31", "2025-01-01"), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LongestDailyStreak(tc.days))
		})
	}
}

func TestTrackedCriteria(t *testing.T) {
	for _, c := range []string{CriteriaPostCount, CriteriaMinecraftPosts, CriteriaProjectPosts, CriteriaDailyStreak} {
		assert.True(t, TrackedCriteria(c), c)
	}
	assert.False(t, TrackedCriteria("helpful_comments"))
	assert.False(t, TrackedCriteria(""))
}

func TestComputeProgress(t *testing.T) {
	day := func(s string) *time.Time {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad day %q: %v", s, err)
		}
		return &ts
	}
	post := func(published *time.Time, slugs ...string) models.Post {
		tags := make([]models.Tag, 0, len(slugs))
		for _, s := range slugs {
			tags = append(tags, models.Tag{Name: s, Slug: s})
		}
		return models.Post{PublishedAt: published, Tags: tags}
	}

	posts := []models.Post{
		post(day("2025-06-01"), "minecraft"),
		post(day("2025-06-02"), "minecraft", "project"),
		post(day("2025-06-03"), "projects"),
		post(day("2025-06-03"), "dinosaurs"),
		post(day("2025-06-07"), "minecraft"),
	}

	got := ComputeProgress(posts)
	assert.Equal(t, 5, got[CriteriaPostCount])
	assert.Equal(t, 3, got[CriteriaMinecraftPosts])
	assert.Equal(t, 2, got[CriteriaProjectPosts], "both project and projects slugs count")
	assert.Equal(t, 3, got[CriteriaDailyStreak], "June 1-3 is the longest run")
}

func TestComputeProgressEmpty(t *testing.T) {
	got := ComputeProgress(nil)
	assert.Equal(t, 0, got[CriteriaPostCount])
	assert.Equal(t, 0, got[CriteriaMinecraftPosts])
	assert.Equal(t, 0, got[CriteriaProjectPosts])
	assert.Equal(t, 0, got[CriteriaDailyStreak])
}

func TestComputeProgressDuplicateTagOnPost(t *testing.T) {
	// A post tagged minecraft twice still counts once.
	p := models.Post{Tags: []models.Tag{{Slug: "minecraft"}, {Slug: "minecraft"}}}
	got := ComputeProgress([]models.Post{p})
	assert.Equal(t, 1, got[CriteriaMinecraftPosts])
}

func TestComputeProgressFallsBackToCreatedAt(t *testing.T) {
	created, _ := time.Parse("2006-01-02", "2025-05-10")
	p := models.Post{CreatedAt: created}
	got := ComputeProgress([]models.Post{p})
	assert.Equal(t, 1, got[CriteriaDailyStreak])
}
