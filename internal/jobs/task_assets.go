package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/shotline/shotline/internal/models"
	"github.com/shotline/shotline/internal/repository"
)

// RegisterAssetHandler registers files the drop-directory watcher found.
// Registration is idempotent on path so a rename storm or watcher restart
// never creates duplicate assets.
type RegisterAssetHandler struct {
	assetRepo *repository.AssetRepository
	notifier  EventNotifier
}

func NewRegisterAssetHandler(assetRepo *repository.AssetRepository, notifier EventNotifier) *RegisterAssetHandler {
	return &RegisterAssetHandler{assetRepo: assetRepo, notifier: notifier}
}

func (h *RegisterAssetHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p RegisterAssetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	existing, err := h.assetRepo.FindByPath(ctx, p.Path)
	if err != nil {
		return fmt.Errorf("find asset by path: %w", err)
	}
	if existing != nil {
		log.Printf("Job: asset already registered for %s, skipping", p.Path)
		return nil
	}

	asset := &models.Asset{
		ID:   uuid.New(),
		Kind: models.EntryKind(p.Kind),
		Path: p.Path,
	}
	if err := h.assetRepo.Create(ctx, asset); err != nil {
		return fmt.Errorf("create asset: %w", err)
	}

	log.Printf("Job: registered %s asset %s (%s)", asset.Kind, asset.ID, p.Path)
	if h.notifier != nil {
		h.notifier.Broadcast("asset:new", asset)
	}
	return nil
}
