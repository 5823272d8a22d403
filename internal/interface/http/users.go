package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/internal/application/query"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

type registerRequest struct {
	Username   string   `json:"username" binding:"required,max=64"`
	Email      string   `json:"email" binding:"omitempty,email"`
	Subjects   []string `json:"subjects" binding:"dive,required"`
	SkillLevel string   `json:"skill_level" binding:"required,skill_level"`
}

type updateProfileRequest struct {
	Username   string   `json:"username" binding:"required,max=64"`
	Subjects   []string `json:"subjects" binding:"dive,required"`
	SkillLevel string   `json:"skill_level" binding:"required,skill_level"`
}

type tokensResponse struct {
	UserID      string `json:"user_id"`
	StudyTokens uint64 `json:"study_tokens"`
}

type streakResponse struct {
	StudyStreak uint32 `json:"study_streak"`
	Previous    uint32 `json:"previous"`
	Reset       bool   `json:"reset"`
	Throttled   bool   `json:"throttled"`
	BonusEarned bool   `json:"bonus_earned"`
	Bonus       uint64 `json:"bonus,omitempty"`
	StudyTokens uint64 `json:"study_tokens"`
	Achievement string `json:"achievement,omitempty"`
}

func (s *Server) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := s.app.RegisterUser.Handle(c.Request.Context(), command.RegisterUserCommand{
		Caller:     callerOf(c),
		Username:   req.Username,
		Email:      req.Email,
		Subjects:   req.Subjects,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated,
		fmt.Sprintf("User %s registered successfully with %d study tokens!", res.Profile.Username, res.Balance),
		query.NewProfileView(res.Profile, res.Balance))
}

func (s *Server) getProfile(c *gin.Context) {
	view, err := s.app.Users.Profile(c.Request.Context(), shared.Identity(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", view)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	p, err := s.app.UpdateProfile.Handle(ctx, command.UpdateProfileCommand{
		Caller:     callerOf(c),
		Username:   req.Username,
		Subjects:   req.Subjects,
		SkillLevel: req.SkillLevel,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	tokens, err := s.app.Users.Tokens(ctx, p.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK,
		fmt.Sprintf("Profile updated successfully for %s", p.Username),
		query.NewProfileView(p, tokens))
}

func (s *Server) getTokens(c *gin.Context) {
	id := c.Param("id")
	n, err := s.app.Users.Tokens(c.Request.Context(), shared.Identity(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", tokensResponse{UserID: id, StudyTokens: n})
}

func (s *Server) getAchievements(c *gin.Context) {
	list, err := s.app.Users.Achievements(c.Request.Context(), shared.Identity(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

func (s *Server) getUserStats(c *gin.Context) {
	st, err := s.app.Users.Stats(c.Request.Context(), shared.Identity(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", st)
}

func (s *Server) getUserGroups(c *gin.Context) {
	groups, err := s.app.Groups.UserGroups(c.Request.Context(), shared.Identity(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", groups)
}

func (s *Server) updateStreak(c *gin.Context) {
	res, err := s.app.UpdateStreak.Handle(c.Request.Context(), command.UpdateStreakCommand{
		Caller: callerOf(c),
		UserID: c.Param("id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	msg := fmt.Sprintf("Study streak updated to %d days!", res.Streak)
	if res.BonusEarned {
		msg += fmt.Sprintf(" You earned %d bonus tokens for your %d-day streak!", res.Bonus, res.Streak)
	}
	respondOK(c, http.StatusOK, msg, streakResponse{
		StudyStreak: res.Streak,
		Previous:    res.Previous,
		Reset:       res.Reset,
		Throttled:   res.Throttled,
		BonusEarned: res.BonusEarned,
		Bonus:       res.Bonus,
		StudyTokens: res.Balance,
		Achievement: res.Achievement,
	})
}

func (s *Server) findMatches(c *gin.Context) {
	matches, err := s.app.Matches.Handle(c.Request.Context(), shared.Identity(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", matches)
}
