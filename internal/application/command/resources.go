package command

import (
	"context"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/resource"
	"github.com/alem-hub/studyhub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPLOAD RESOURCE
// ══════════════════════════════════════════════════════════════════════════════

// UploadResourceCommand publishes a study material.
type UploadResourceCommand struct {
	Caller      string
	Title       string
	Description string
	Type        string
	IPFSHash    string

	// GroupID optionally attaches the resource to a group the caller belongs to.
	GroupID string
}

// UploadResourceResult is returned on success.
type UploadResourceResult struct {
	Resource *resource.Resource
	Reward   uint64
	Balance  uint64
}

// UploadResourceHandler handles UploadResourceCommand.
type UploadResourceHandler struct {
	deps Deps
}

// NewUploadResourceHandler creates a new UploadResourceHandler.
func NewUploadResourceHandler(deps Deps) *UploadResourceHandler {
	return &UploadResourceHandler{deps: deps.withDefaults()}
}

// Handle stores the resource and credits the upload reward.
func (h *UploadResourceHandler) Handle(ctx context.Context, cmd UploadResourceCommand) (*UploadResourceResult, error) {
	id, err := shared.NewIdentity(cmd.Caller)
	if err != nil {
		return nil, err
	}
	rt, err := shared.ParseResourceType(cmd.Type)
	if err != nil {
		return nil, err
	}
	resourceID := h.deps.NewID(resource.IDPrefix)

	keys := []string{platform.UserKey(id), platform.ResourceKey(resourceID)}
	if cmd.GroupID != "" {
		keys = append(keys, platform.GroupKey(cmd.GroupID))
	}

	var res *UploadResourceResult
	err = h.deps.run(ctx, "upload_resource", id, keys,
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			if err := requireUser(ctx, r, id); err != nil {
				return nil, err
			}

			now := h.deps.Clock.Now()
			item, err := resource.NewResource(resource.NewResourceParams{
				ID:          resourceID,
				Title:       cmd.Title,
				Description: cmd.Description,
				Type:        rt,
				IPFSHash:    cmd.IPFSHash,
				Uploader:    id,
				Now:         now,
			})
			if err != nil {
				return nil, err
			}

			if cmd.GroupID != "" {
				g, err := r.Groups().Get(ctx, cmd.GroupID)
				if err != nil {
					return nil, err
				}
				if !g.IsMember(id) {
					return nil, shared.ErrNotGroupMember
				}
				g.AttachResource(item.ID)
				if err := r.Groups().Save(ctx, g); err != nil {
					return nil, err
				}
			}

			if err := r.Resources().Save(ctx, item); err != nil {
				return nil, err
			}
			bal, credited, err := credit(ctx, r, id, ledger.ResourceUploadReward, ledger.ReasonUpload, now)
			if err != nil {
				return nil, err
			}

			res = &UploadResourceResult{Resource: item, Reward: ledger.ResourceUploadReward, Balance: bal}
			return []shared.Event{
				shared.NewResourceEvent(shared.EventResourceUploaded, item.ID, id, item.Type, 0, now),
				credited,
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOWNLOAD RESOURCE
// ══════════════════════════════════════════════════════════════════════════════

// DownloadResourceCommand counts one download.
type DownloadResourceCommand struct {
	Caller     string
	ResourceID string
}

// DownloadResourceHandler handles DownloadResourceCommand.
type DownloadResourceHandler struct {
	deps Deps
}

// NewDownloadResourceHandler creates a new DownloadResourceHandler.
func NewDownloadResourceHandler(deps Deps) *DownloadResourceHandler {
	return &DownloadResourceHandler{deps: deps.withDefaults()}
}

// Handle increments the download counter. Anonymous callers are allowed.
func (h *DownloadResourceHandler) Handle(ctx context.Context, cmd DownloadResourceCommand) (*resource.Resource, error) {
	if cmd.ResourceID == "" {
		return nil, shared.ErrResourceNotFound
	}
	caller := shared.Identity(cmd.Caller)

	var out *resource.Resource
	err := h.deps.run(ctx, "download_resource", caller, []string{platform.ResourceKey(cmd.ResourceID)},
		func(ctx context.Context, r platform.Repositories) ([]shared.Event, error) {
			item, err := r.Resources().Get(ctx, cmd.ResourceID)
			if err != nil {
				return nil, err
			}
			item.RecordDownload()
			if err := r.Resources().Save(ctx, item); err != nil {
				return nil, err
			}
			out = item
			return []shared.Event{
				shared.NewResourceEvent(shared.EventResourceDownloaded, item.ID, caller, item.Type, item.Downloads, h.deps.Clock.Now()),
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}
