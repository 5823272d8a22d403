package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alem-hub/studyhub/internal/application/command"
)

type uploadResourceRequest struct {
	Title       string `json:"title" binding:"required,max=256"`
	Description string `json:"description" binding:"max=4096"`
	Type        string `json:"type" binding:"required,resource_type"`
	IPFSHash    string `json:"ipfs_hash" binding:"required"`
	GroupID     string `json:"group_id"`
}

type transferRequest struct {
	To     string `json:"to" binding:"required"`
	Amount uint64 `json:"amount" binding:"required,min=1"`
}

type transferResponse struct {
	Amount      uint64 `json:"amount"`
	FromBalance uint64 `json:"from_balance"`
	ToBalance   uint64 `json:"to_balance"`
}

func (s *Server) uploadResource(c *gin.Context) {
	var req uploadResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := s.app.UploadResource.Handle(c.Request.Context(), command.UploadResourceCommand{
		Caller:      callerOf(c),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		IPFSHash:    req.IPFSHash,
		GroupID:     req.GroupID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated,
		fmt.Sprintf("Resource \"%s\" uploaded successfully! You earned %d study tokens.", res.Resource.Title, res.Reward),
		res.Resource)
}

func (s *Server) listResources(c *gin.Context) {
	list, err := s.app.Groups.Resources(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

func (s *Server) downloadResource(c *gin.Context) {
	item, err := s.app.DownloadResource.Handle(c.Request.Context(), command.DownloadResourceCommand{
		Caller:     callerOf(c),
		ResourceID: c.Param("id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Resource \"%s\" downloaded successfully!", item.Title), item)
}

func (s *Server) transferTokens(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := s.app.TransferTokens.Handle(c.Request.Context(), command.TransferTokensCommand{
		Caller:    callerOf(c),
		Recipient: req.To,
		Amount:    req.Amount,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK,
		fmt.Sprintf("Transferred %d study tokens successfully!", res.Amount),
		transferResponse{Amount: res.Amount, FromBalance: res.FromBalance, ToBalance: res.ToBalance})
}

func (s *Server) platformStats(c *gin.Context) {
	st, err := s.app.PlatformStats.Handle(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", st)
}
