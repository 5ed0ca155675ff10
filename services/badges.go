package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

// Criteria types the evaluator can measure automatically. Anything else is
// inert: such badges can only be awarded manually by a parent.
const (
	CriteriaPostCount      = "post_count"
	CriteriaMinecraftPosts = "minecraft_tag_posts"
	CriteriaProjectPosts   = "project_posts"
	CriteriaDailyStreak    = "daily_streak"
)

// ErrEvaluationFailed wraps store failures during evaluation. Awards already
// committed before the failure stay committed; each badge is an independent
// upsert.
var ErrEvaluationFailed = errors.New("badge evaluation failed")

const badgeCatalogKey = "badges:catalog"

// TrackedCriteria reports whether the evaluator knows how to measure t.
func TrackedCriteria(t string) bool {
	switch t {
	case CriteriaPostCount, CriteriaMinecraftPosts, CriteriaProjectPosts, CriteriaDailyStreak:
		return true
	}
	return false
}

// AwardedBadge identifies a badge granted by an Evaluate call.
type AwardedBadge struct {
	BadgeID   uint   `json:"badge_id"`
	BadgeName string `json:"badge_name"`
}

// BadgeEvaluator computes badge progress from a user's approved posts and
// awards newly qualified badges at most once per (user, badge).
type BadgeEvaluator struct {
	db      *gorm.DB
	catalog *utils.TTLCache
}

// NewBadgeEvaluator creates an evaluator. catalog caches the badge table for
// its TTL; pass a short-lived cache owned by the caller.
func NewBadgeEvaluator(db *gorm.DB, catalog *utils.TTLCache) *BadgeEvaluator {
	return &BadgeEvaluator{db: db, catalog: catalog}
}

// Evaluate computes progress for every unearned tracked badge of the user and
// awards those whose threshold is met. It returns only badges newly awarded
// by this call: rows that already existed are never re-returned, so calling
// twice with no new posts yields an empty list the second time.
func (e *BadgeEvaluator) Evaluate(userID uint) ([]AwardedBadge, error) {
	badges, err := e.loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("%w: load badges: %v", ErrEvaluationFailed, err)
	}

	var earnedRows []models.UserBadge
	if err := e.db.Where("user_id = ?", userID).Find(&earnedRows).Error; err != nil {
		return nil, fmt.Errorf("%w: load earned badges: %v", ErrEvaluationFailed, err)
	}
	earned := make(map[uint]bool, len(earnedRows))
	for _, ub := range earnedRows {
		earned[ub.BadgeID] = true
	}

	// Determine which metrics are actually needed before touching posts.
	needed := false
	for _, b := range badges {
		if !earned[b.ID] && TrackedCriteria(b.CriteriaType) && b.CriteriaThreshold > 0 {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}

	// One read: the user's approved posts with their tag slugs. All four
	// tracked metrics derive from this set.
	var posts []models.Post
	if err := e.db.Preload("Tags").
		Where("user_id = ? AND status = ?", userID, models.StatusApproved).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("%w: load approved posts: %v", ErrEvaluationFailed, err)
	}
	progress := ComputeProgress(posts)

	var awarded []AwardedBadge
	var firstErr error
	for _, b := range badges {
		if earned[b.ID] || !TrackedCriteria(b.CriteriaType) || b.CriteriaThreshold <= 0 {
			continue
		}
		if progress[b.CriteriaType] < b.CriteriaThreshold {
			continue
		}
		inserted, err := e.award(userID, b.ID)
		if err != nil {
			// Awards are independent; keep going and report the first failure.
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if inserted {
			awarded = append(awarded, AwardedBadge{BadgeID: b.ID, BadgeName: b.Name})
		}
	}

	if firstErr != nil {
		return awarded, fmt.Errorf("%w: %v", ErrEvaluationFailed, firstErr)
	}
	return awarded, nil
}

// Award grants a badge manually (parent/admin action), regardless of its
// criteria type. Returns whether a new row was inserted.
func (e *BadgeEvaluator) Award(userID, badgeID uint) (bool, error) {
	var badge models.Badge
	if err := e.db.First(&badge, badgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return e.award(userID, badgeID)
}

// award performs the conflict-ignoring upsert that guarantees at-most-once.
// RowsAffected distinguishes a fresh insert from an ignored duplicate.
func (e *BadgeEvaluator) award(userID, badgeID uint) (bool, error) {
	ub := models.UserBadge{UserID: userID, BadgeID: badgeID, AwardedAt: time.Now()}
	res := e.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&ub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Progress returns the user's current metric values without awarding
// anything, for the "check badge progress" page.
func (e *BadgeEvaluator) Progress(userID uint) (map[string]int, error) {
	var posts []models.Post
	if err := e.db.Preload("Tags").
		Where("user_id = ? AND status = ?", userID, models.StatusApproved).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("%w: load approved posts: %v", ErrEvaluationFailed, err)
	}
	return ComputeProgress(posts), nil
}

func (e *BadgeEvaluator) loadCatalog() ([]models.Badge, error) {
	if e.catalog != nil {
		if v, ok := e.catalog.Get(badgeCatalogKey); ok {
			return v.([]models.Badge), nil
		}
	}
	var badges []models.Badge
	if err := e.db.Order("id").Find(&badges).Error; err != nil {
		return nil, err
	}
	if e.catalog != nil {
		e.catalog.Set(badgeCatalogKey, badges)
	}
	return badges, nil
}

// InvalidateCatalog drops the cached badge table, e.g. after a parent edits badges.
func (e *BadgeEvaluator) InvalidateCatalog() {
	if e.catalog != nil {
		e.catalog.Invalidate(badgeCatalogKey)
	}
}

// ComputeProgress derives every tracked metric from one set of approved
// posts. Values only grow as approved posts accumulate.
func ComputeProgress(posts []models.Post) map[string]int {
	minecraft := 0
	project := 0
	days := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		slugs := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			slugs[t.Slug] = true
		}
		if slugs["minecraft"] {
			minecraft++
		}
		if slugs["project"] || slugs["projects"] {
			project++
		}
		at := p.CreatedAt
		if p.PublishedAt != nil {
			at = *p.PublishedAt
		}
		days[at.UTC().Format("2006-01-02")] = struct{}{}
	}
	return map[string]int{
		CriteriaPostCount:      len(posts),
		CriteriaMinecraftPosts: minecraft,
		CriteriaProjectPosts:   project,
		CriteriaDailyStreak:    LongestDailyStreak(days),
	}
}

// LongestDailyStreak returns the longest run of consecutive UTC calendar days
// in the set. Days are "2006-01-02" strings; an empty set is streak 0, any
// day at all is at least 1.
func LongestDailyStreak(days map[string]struct{}) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	best := 1
	run := 1
	prev, _ := time.Parse("2006-01-02", sorted[0])
	for _, d := range sorted[1:] {
		cur, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		if cur.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = cur
	}
	return best
}
