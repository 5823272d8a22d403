// Package resource contains shared study materials.
package resource

import (
	"strings"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// IDPrefix prefixes generated resource IDs.
const IDPrefix = "resource_"

// Resource is a study material referenced by content hash.
type Resource struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        shared.ResourceType `json:"type"`
	IPFSHash    string              `json:"ipfs_hash"`
	Uploader    shared.Identity     `json:"uploader"`
	UploadDate  time.Time           `json:"upload_date"`
	Downloads   uint64              `json:"downloads"`
	Rating      float64             `json:"rating"`
}

// NewResourceParams holds upload input after boundary parsing.
type NewResourceParams struct {
	ID          string
	Title       string
	Description string
	Type        shared.ResourceType
	IPFSHash    string
	Uploader    shared.Identity
	Now         time.Time
}

// NewResource validates and builds a resource with zero downloads.
func NewResource(p NewResourceParams) (*Resource, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, shared.ErrInvalidResourceTitle
	}
	if !p.Type.IsValid() {
		return nil, shared.ErrInvalidResourceType
	}
	return &Resource{
		ID:          p.ID,
		Title:       title,
		Description: strings.TrimSpace(p.Description),
		Type:        p.Type,
		IPFSHash:    strings.TrimSpace(p.IPFSHash),
		Uploader:    p.Uploader,
		UploadDate:  p.Now,
	}, nil
}

// RecordDownload increments the download counter.
func (r *Resource) RecordDownload() {
	r.Downloads++
}
