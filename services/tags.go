package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storynest/storynest/models"
	"github.com/storynest/storynest/utils"
)

// TagService owns tag rows and their links to posts. Tags are upserted by
// slug and link rows by (post, tag), so repeating an attach is harmless —
// recovery from a half-applied attach is simply retrying the whole call.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates the service.
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// UpsertTags sanitizes names and ensures a tag row exists for each,
// returning the rows in input order. Slug derivation is deterministic, which
// is what makes the upsert idempotent.
func (t *TagService) UpsertTags(names []string) ([]models.Tag, error) {
	names = utils.SanitizeTagNames(names)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		slug := utils.Slugify(name)
		if slug == "" {
			continue
		}
		tag := models.Tag{Name: name, Slug: slug}
		if err := t.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return tags, err
		}
		// On conflict the insert is skipped and ID stays zero; reload by slug.
		if tag.ID == 0 {
			if err := t.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
				return tags, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// SetPostTags replaces a post's tag set with the named tags.
func (t *TagService) SetPostTags(post *models.Post, names []string) error {
	tags, err := t.UpsertTags(names)
	if err != nil {
		return err
	}
	return t.db.Model(post).Association("Tags").Replace(tags)
}

// FindApprovedPostsByTag returns approved posts carrying the tag, expanding
// known typo variants so historical mis-tagged posts still match.
func (t *TagService) FindApprovedPostsByTag(slug string, offset, limit int) ([]models.Post, int64, error) {
	canonical := utils.NormalizeSlug(slug, slug)
	variants := utils.SlugVariants(canonical)

	base := t.db.Model(&models.Post{}).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.slug IN ? AND posts.status = ?", variants, models.StatusApproved).
		Distinct("posts.id")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	if err := t.db.Preload("User").Preload("Tags").
		Where("posts.status = ?", models.StatusApproved).
		Where("posts.id IN (?)", t.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug IN ?", variants)).
		Order("published_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
