package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storynest/storynest/models"
)

// ErrInvalidKind is returned for reaction kinds outside the known set.
// Unknown kinds are rejected, never silently counted as zero.
var ErrInvalidKind = errors.New("invalid reaction kind")

// KnownReactionKinds is the closed set of reaction emoji the site offers.
var KnownReactionKinds = []string{"heart", "star", "laugh", "wow"}

// reactionNamespace seeds the deterministic reaction identifiers. Changing it
// would orphan every existing reaction row.
var reactionNamespace = uuid.MustParse("9f2c1a70-4b7e-4f3a-9c51-2d1a86f3b0e4")

// ReactionID derives the stable identifier for the anonymous reaction row of
// (postID, kind). Repeated toggles always address the same logical row; this
// stands in for a composite natural key.
func ReactionID(postID uint, kind string) string {
	return uuid.NewSHA1(reactionNamespace, []byte(fmt.Sprintf("post:%d:%s", postID, kind))).String()
}

// ValidReactionKind reports whether kind is in the known set.
func ValidReactionKind(kind string) bool {
	for _, k := range KnownReactionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ReactionService maintains anonymous per-post reaction toggles and counts.
type ReactionService struct {
	db *gorm.DB
}

// NewReactionService creates the service.
func NewReactionService(db *gorm.DB) *ReactionService {
	return &ReactionService{db: db}
}

// Toggle flips the anonymous reaction for (postID, kind): deletes the row if
// present, inserts it otherwise. Returns whether the reaction is now on.
//
// The check-then-act pair is not atomic; two concurrent toggles for the same
// pair can race. That is an accepted limitation — a follow-up toggle
// self-corrects — so no locking is taken here.
func (r *ReactionService) Toggle(postID uint, kind string) (bool, error) {
	if !ValidReactionKind(kind) {
		return false, ErrInvalidKind
	}
	var post models.Post
	if err := r.db.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	id := ReactionID(postID, kind)
	var existing models.Reaction
	err := r.db.Where("id = ? AND user_id IS NULL", id).First(&existing).Error
	switch {
	case err == nil:
		if err := r.db.Delete(&models.Reaction{}, "id = ?", id).Error; err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := models.Reaction{
			ID:         id,
			TargetType: models.ReactionTargetPost,
			TargetID:   id,
			Kind:       kind,
		}
		if err := r.db.Create(&reaction).Error; err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// Counts returns the reaction count for every known kind on a post.
func (r *ReactionService) Counts(postID uint) (map[string]int64, error) {
	ids := make([]string, 0, len(KnownReactionKinds))
	byID := make(map[string]string, len(KnownReactionKinds))
	counts := make(map[string]int64, len(KnownReactionKinds))
	for _, kind := range KnownReactionKinds {
		id := ReactionID(postID, kind)
		ids = append(ids, id)
		byID[id] = kind
		counts[kind] = 0
	}

	type row struct {
		TargetID string
		N        int64
	}
	var rows []row
	if err := r.db.Model(&models.Reaction{}).
		Select("target_id, COUNT(*) AS n").
		Where("target_type = ? AND target_id IN ?", models.ReactionTargetPost, ids).
		Group("target_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		if kind, ok := byID[rw.TargetID]; ok {
			counts[kind] = rw.N
		}
	}
	return counts, nil
}
