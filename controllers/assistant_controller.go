package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/storynest/storynest/services"
	"github.com/storynest/storynest/utils"
)

// AssistantController serves the daily writing tip and fun fact. Responses
// always succeed: upstream failures are absorbed by the fallback lists.
type AssistantController struct {
	assistant *services.Assistant
}

// NewAssistantController creates a new controller instance.
func NewAssistantController(assistant *services.Assistant) *AssistantController {
	return &AssistantController{assistant: assistant}
}

// DailyTip returns today's writing tip.
func (a *AssistantController) DailyTip(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"tip": a.assistant.DailyTip(ctx.Request.Context())})
}

// FunFact returns today's fun fact.
func (a *AssistantController) FunFact(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"fact": a.assistant.FunFact(ctx.Request.Context())})
}
