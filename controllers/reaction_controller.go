package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// ReactionController exposes anonymous emoji reactions on approved posts.
type ReactionController struct {
	reactions *services.ReactionService
}

// NewReactionController creates a new controller instance.
func NewReactionController(reactions *services.ReactionService) *ReactionController {
	return &ReactionController{reactions: reactions}
}

// Toggle flips a reaction on a post and returns the updated counts.
func (r *ReactionController) Toggle(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid post id")
		return
	}

	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}

	active, err := r.reactions.Toggle(postID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidKind):
			utils.Error(ctx, http.StatusBadRequest, 40052, "unknown reaction kind")
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40450, "post not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to toggle reaction")
		}
		return
	}

	counts, err := r.reactions.Counts(postID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load reaction counts")
		return
	}

	utils.CacheDelete(postDetailKey(postID))
	utils.Success(ctx, gin.H{"active": active, "counts": counts})
}

// Counts returns per-kind reaction counts for a post.
func (r *ReactionController) Counts(ctx *gin.Context) {
	postID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid post id")
		return
	}

	counts, err := r.reactions.Counts(postID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load reaction counts")
		return
	}
	utils.Success(ctx, gin.H{"counts": counts})
}
