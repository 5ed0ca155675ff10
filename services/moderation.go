package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/storynest/storynest/config"
	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

// Sentinel errors shared by the services layer. Controllers map these to the
// JSON error envelope.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CanTransition encodes the moderation state machine:
// draft → pending → approved/rejected, with re-submit (pending → pending)
// and explicit re-review (approved/rejected → pending).
func CanTransition(from, to string) bool {
	switch to {
	case models.StatusPending:
		return from == models.StatusDraft || from == models.StatusPending ||
			from == models.StatusApproved || from == models.StatusRejected
	case models.StatusApproved, models.StatusRejected:
		return from == models.StatusPending
	}
	return false
}

// CanSubmit reports whether an author may move their own post into the review
// queue. Only draft and pending (re-submit) qualify; pulling an approved or
// rejected post back to pending is a moderator action (ReopenPost), never the
// author's.
func CanSubmit(from string) bool {
	return from == models.StatusDraft || from == models.StatusPending
}

// ModerationService owns post/comment lifecycle transitions. Role checks
// (only parents approve/reject) happen at the delivery layer; this service
// still verifies authorship where the rule is about ownership.
type ModerationService struct {
	db        *gorm.DB
	evaluator *BadgeEvaluator
}

// NewModerationService creates the service. evaluator may be nil in tests;
// badge evaluation after approval is best-effort either way.
func NewModerationService(db *gorm.DB, evaluator *BadgeEvaluator) *ModerationService {
	return &ModerationService{db: db, evaluator: evaluator}
}

// SubmitPost moves an author's draft (or pending, for re-submit) post into
// the review queue and notifies parents by email. Mail failure never blocks
// the transition.
func (m *ModerationService) SubmitPost(postID, actorID uint) (*models.Post, error) {
	var post models.Post
	if err := m.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.UserID != actorID {
		return nil, ErrForbidden
	}
	if !CanSubmit(post.Status) {
		return nil, ErrInvalidTransition
	}

	post.Status = models.StatusPending
	if err := m.db.Model(&post).Update("status", models.StatusPending).Error; err != nil {
		return nil, err
	}

	m.notifyParents(
		fmt.Sprintf("Review requested: %q", post.Title),
		fmt.Sprintf("A new story %q is waiting for review on %s.", post.Title, config.Get().SiteTitle),
	)
	return &post, nil
}

// ApprovePost publishes a pending post. PublishedAt is set exactly once, at
// first approval; approving an already-approved post is a no-op. The author
// is rewarded XP and the badge evaluator runs afterwards, best-effort.
func (m *ModerationService) ApprovePost(postID uint) (*models.Post, []AwardedBadge, error) {
	var post models.Post
	if err := m.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if post.Status == models.StatusApproved {
		return &post, nil, nil
	}
	if !CanTransition(post.Status, models.StatusApproved) {
		return nil, nil, ErrInvalidTransition
	}

	firstApproval := post.PublishedAt == nil
	err := m.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.StatusApproved}
		if firstApproval {
			now := time.Now()
			post.PublishedAt = &now
			updates["published_at"] = now
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return err
		}
		if firstApproval {
			reward := config.Get().ApprovalRewardXP
			if err := tx.Model(&models.User{}).Where("id = ?", post.UserID).
				Update("xp", gorm.Expr("xp + ?", reward)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	post.Status = models.StatusApproved

	var newlyAwarded []AwardedBadge
	if m.evaluator != nil {
		awarded, err := m.evaluator.Evaluate(post.UserID)
		if err != nil {
			utils.Sugar.Warnf("badge evaluation after approval of post %d failed: %v", post.ID, err)
		}
		newlyAwarded = awarded
	}
	return &post, newlyAwarded, nil
}

// RejectPost moves a pending post to rejected. PublishedAt is untouched.
func (m *ModerationService) RejectPost(postID uint) (*models.Post, error) {
	return m.setPostStatus(postID, models.StatusRejected)
}

// ReopenPost sends an approved or rejected post back to the review queue.
func (m *ModerationService) ReopenPost(postID uint) (*models.Post, error) {
	return m.setPostStatus(postID, models.StatusPending)
}

// setPostStatus applies a reviewed transition. Repeating a transition the
// post is already in is an idempotent success, same as ApprovePost on an
// approved post: a double-clicked review button is not an error.
func (m *ModerationService) setPostStatus(postID uint, to string) (*models.Post, error) {
	var post models.Post
	if err := m.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.Status == to {
		return &post, nil
	}
	if !CanTransition(post.Status, to) {
		return nil, ErrInvalidTransition
	}
	if err := m.db.Model(&post).Update("status", to).Error; err != nil {
		return nil, err
	}
	post.Status = to
	return &post, nil
}

// ApproveComment publishes a pending comment.
func (m *ModerationService) ApproveComment(commentID uint) (*models.Comment, error) {
	return m.setCommentStatus(commentID, models.StatusApproved)
}

// RejectComment hides a pending comment.
func (m *ModerationService) RejectComment(commentID uint) (*models.Comment, error) {
	return m.setCommentStatus(commentID, models.StatusRejected)
}

// setCommentStatus mirrors setPostStatus, including the idempotent success
// when the comment already holds the target status.
func (m *ModerationService) setCommentStatus(commentID uint, to string) (*models.Comment, error) {
	var comment models.Comment
	if err := m.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if comment.Status == to {
		return &comment, nil
	}
	if !CanTransition(comment.Status, to) {
		return nil, ErrInvalidTransition
	}
	if err := m.db.Model(&comment).Update("status", to).Error; err != nil {
		return nil, err
	}
	comment.Status = to
	return &comment, nil
}

// notifyParents emails every parent account, fire-and-forget.
func (m *ModerationService) notifyParents(subject, body string) {
	var parents []models.User
	if err := m.db.Where("role = ? AND email <> ''", models.RoleParent).Find(&parents).Error; err != nil {
		utils.Sugar.Warnf("loading parents for notification failed: %v", err)
		return
	}
	for _, p := range parents {
		utils.NotifyAsync(p.Email, subject, body)
	}
}
