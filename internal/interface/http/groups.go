package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/internal/domain/group"
	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

type createGroupRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=2048"`
	Subject     string `json:"subject" binding:"required"`
	SkillLevel  string `json:"skill_level" binding:"required,skill_level"`
	MaxMembers  uint32 `json:"max_members" binding:"required,min=1"`
}

type createSessionRequest struct {
	Title       string    `json:"title" binding:"required,max=128"`
	Description string    `json:"description" binding:"max=2048"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Duration    uint32    `json:"duration" binding:"required,min=1"`
	ResourceIDs []string  `json:"resource_ids" binding:"dive,required"`
}

type completeSessionRequest struct {
	Notes string `json:"notes" binding:"max=4096"`
}

type completeSessionResponse struct {
	Session  *group.Session    `json:"session"`
	Reward   uint64            `json:"reward"`
	Rewarded []shared.Identity `json:"rewarded"`
}

func (s *Server) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := s.app.CreateGroup.Handle(c.Request.Context(), command.CreateGroupCommand{
		Caller:      callerOf(c),
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
		SkillLevel:  req.SkillLevel,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated,
		fmt.Sprintf("Study group \"%s\" created successfully! You earned %d study tokens.", res.Group.Name, res.Reward),
		res.Group)
}

func (s *Server) listGroups(c *gin.Context) {
	groups, err := s.app.Groups.Groups(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", groups)
}

func (s *Server) getGroup(c *gin.Context) {
	g, err := s.app.Groups.Group(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", g)
}

func (s *Server) joinGroup(c *gin.Context) {
	res, err := s.app.JoinGroup.Handle(c.Request.Context(), command.JoinGroupCommand{
		Caller:  callerOf(c),
		GroupID: c.Param("id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK,
		fmt.Sprintf("Successfully joined study group \"%s\"! You earned %d study tokens.", res.Group.Name, res.Reward),
		res.Group)
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sess, err := s.app.CreateSession.Handle(c.Request.Context(), command.CreateSessionCommand{
		Caller:      callerOf(c),
		GroupID:     c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		Duration:    req.Duration,
		ResourceIDs: req.ResourceIDs,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated,
		fmt.Sprintf("Study session \"%s\" created successfully!", sess.Title), sess)
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.app.Groups.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", sess)
}

func (s *Server) joinSession(c *gin.Context) {
	sess, err := s.app.JoinSession.Handle(c.Request.Context(), command.JoinSessionCommand{
		Caller:    callerOf(c),
		SessionID: c.Param("id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK,
		fmt.Sprintf("Successfully joined study session \"%s\"!", sess.Title), sess)
}

func (s *Server) completeSession(c *gin.Context) {
	var req completeSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	res, err := s.app.CompleteSession.Handle(c.Request.Context(), command.CompleteSessionCommand{
		Caller:    callerOf(c),
		SessionID: c.Param("id"),
		Notes:     req.Notes,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK,
		fmt.Sprintf("Study session completed! All participants earned %d study tokens.", ledger.SessionCompletionReward),
		completeSessionResponse{Session: res.Session, Reward: res.Reward, Rewarded: res.Rewarded})
}
