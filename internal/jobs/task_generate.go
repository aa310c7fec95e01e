package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/generation"
	"github.com/shotline/shotline/internal/models"
	"github.com/shotline/shotline/internal/repository"
)

// GenerateHandler dispatches batch and pairwise generation jobs. The frames it
// hands to the generator are built from the reconciled entry view, so an
// in-flight reorder or delete is reflected before anything is sent out.
type GenerateHandler struct {
	engine    *engine.Coordinator
	shotRepo  *repository.ShotRepository
	assetRepo *repository.AssetRepository
	genRepo   *repository.GenerationRepository
	generator generation.Generator
	notifier  EventNotifier
}

func NewGenerateHandler(eng *engine.Coordinator, shotRepo *repository.ShotRepository,
	assetRepo *repository.AssetRepository, genRepo *repository.GenerationRepository,
	gen generation.Generator, notifier EventNotifier) *GenerateHandler {
	return &GenerateHandler{
		engine:    eng,
		shotRepo:  shotRepo,
		assetRepo: assetRepo,
		genRepo:   genRepo,
		generator: gen,
		notifier:  notifier,
	}
}

func (h *GenerateHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	switch t.Type() {
	case TaskGeneratePair:
		return h.processPair(ctx, t)
	case TaskGenerateBatch:
		return h.processBatch(ctx, t)
	default:
		return fmt.Errorf("unknown task type %q", t.Type())
	}
}

func (h *GenerateHandler) processBatch(ctx context.Context, t *asynq.Task) error {
	var p GenerateBatchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	jobID, _ := uuid.Parse(p.JobID)
	shotID, _ := uuid.Parse(p.ShotID)

	entries, err := h.engine.Refresh(ctx, shotID)
	if err != nil {
		return h.fail(ctx, jobID, shotID, fmt.Errorf("refresh shot: %w", err))
	}

	frames, err := h.frames(ctx, entries)
	if err != nil {
		return h.fail(ctx, jobID, shotID, err)
	}
	if len(frames) == 0 {
		return h.fail(ctx, jobID, shotID, fmt.Errorf("shot has no positioned images"))
	}

	return h.dispatch(ctx, jobID, shotID, models.GenerationBatch, frames)
}

func (h *GenerateHandler) processPair(ctx context.Context, t *asynq.Task) error {
	var p GeneratePairPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	jobID, _ := uuid.Parse(p.JobID)
	shotID, _ := uuid.Parse(p.ShotID)
	startID, _ := uuid.Parse(p.StartEntryID)
	endID, _ := uuid.Parse(p.EndEntryID)

	entries, err := h.engine.Refresh(ctx, shotID)
	if err != nil {
		return h.fail(ctx, jobID, shotID, fmt.Errorf("refresh shot: %w", err))
	}

	// The pair was captured at enqueue time; either side may have been
	// deleted or reordered since. Only dispatch if both still sit on the
	// timeline.
	var pair []models.Entry
	for _, e := range entries {
		if (e.ID == startID || e.ID == endID) && e.Positioned() {
			pair = append(pair, e)
		}
	}
	if len(pair) != 2 {
		return h.fail(ctx, jobID, shotID, fmt.Errorf("entry pair no longer on timeline"))
	}
	if *pair[0].Position > *pair[1].Position {
		pair[0], pair[1] = pair[1], pair[0]
	}

	frames, err := h.frames(ctx, pair)
	if err != nil {
		return h.fail(ctx, jobID, shotID, err)
	}
	return h.dispatch(ctx, jobID, shotID, models.GenerationPairwise, frames)
}

func (h *GenerateHandler) dispatch(ctx context.Context, jobID, shotID uuid.UUID,
	mode models.GenerationMode, frames []generation.Frame) error {
	if err := h.genRepo.UpdateStatus(ctx, jobID, models.GenerationRunning, nil); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	h.broadcast(jobID, shotID, models.GenerationRunning, nil)

	req := generation.Request{
		JobID:  jobID,
		ShotID: shotID,
		Mode:   mode,
		Frames: frames,
	}
	if shot, err := h.shotRepo.GetByID(ctx, shotID); err == nil {
		req.AspectRatio = shot.AspectRatio
	}

	log.Printf("Job: dispatching %s generation %s for shot %s (%d frames)",
		mode, jobID, shotID, len(frames))
	if err := h.generator.Generate(ctx, req); err != nil {
		return h.fail(ctx, jobID, shotID, err)
	}

	if err := h.genRepo.UpdateStatus(ctx, jobID, models.GenerationComplete, nil); err != nil {
		return fmt.Errorf("mark job complete: %w", err)
	}
	h.broadcast(jobID, shotID, models.GenerationComplete, nil)
	return nil
}

// frames resolves the asset path of every positioned image, in timeline order.
func (h *GenerateHandler) frames(ctx context.Context, entries []models.Entry) ([]generation.Frame, error) {
	var frames []generation.Frame
	for _, e := range entries {
		if e.Kind != models.EntryKindImage || !e.Positioned() {
			continue
		}
		asset, err := h.assetRepo.GetByID(ctx, e.AssetID)
		if err != nil {
			return nil, fmt.Errorf("resolve asset %s: %w", e.AssetID, err)
		}
		frames = append(frames, generation.Frame{
			EntryID:   e.ID,
			AssetPath: asset.Path,
			Position:  *e.Position,
		})
	}
	return frames, nil
}

func (h *GenerateHandler) fail(ctx context.Context, jobID, shotID uuid.UUID, cause error) error {
	log.Printf("Job: generation %s failed: %v", jobID, cause)
	msg := cause.Error()
	if err := h.genRepo.UpdateStatus(ctx, jobID, models.GenerationFailed, &msg); err != nil {
		log.Printf("Job: could not mark generation %s failed: %v", jobID, err)
	}
	h.broadcast(jobID, shotID, models.GenerationFailed, &msg)
	return cause
}

func (h *GenerateHandler) broadcast(jobID, shotID uuid.UUID, status models.GenerationStatus, errMsg *string) {
	if h.notifier == nil {
		return
	}
	data := map[string]interface{}{
		"job_id":  jobID.String(),
		"shot_id": shotID.String(),
		"status":  string(status),
	}
	if errMsg != nil {
		data["error"] = *errMsg
	}
	h.notifier.Broadcast("generation:update", data)
}
