package jobs

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/generation"
	"github.com/shotline/shotline/internal/models"
	"github.com/shotline/shotline/internal/repository"
)

// ──────── Payloads ────────

type GeneratePairPayload struct {
	JobID        string `json:"job_id"`
	ShotID       string `json:"shot_id"`
	StartEntryID string `json:"start_entry_id"`
	EndEntryID   string `json:"end_entry_id"`
}

type GenerateBatchPayload struct {
	JobID  string `json:"job_id"`
	ShotID string `json:"shot_id"`
}

type RegisterAssetPayload struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type EventNotifier interface {
	Broadcast(event string, data interface{})
}

// Pairs returns the adjacent (start, end) pairs of positioned images in a
// reconciled entry list. Videos and unpositioned entries never form pairs.
func Pairs(entries []models.Entry) [][2]models.Entry {
	var images []models.Entry
	for _, e := range entries {
		if e.Kind == models.EntryKindImage && e.Position != nil {
			images = append(images, e)
		}
	}
	if len(images) < 2 {
		return nil
	}
	pairs := make([][2]models.Entry, 0, len(images)-1)
	for i := 0; i+1 < len(images); i++ {
		pairs = append(pairs, [2]models.Entry{images[i], images[i+1]})
	}
	return pairs
}

// ──────── Enqueue helpers ────────

// EnqueueAsset queues registration of a dropped file. The task ID is derived
// from the path so repeated filesystem events for the same file coalesce.
func (q *Queue) EnqueueAsset(path string, kind models.EntryKind) error {
	sum := sha256.Sum256([]byte(path))
	uniqueID := "asset:" + hex.EncodeToString(sum[:8])
	_, err := q.EnqueueUnique(TaskRegisterAsset,
		RegisterAssetPayload{Path: path, Kind: string(kind)},
		uniqueID, asynq.Queue("default"))
	return err
}

func (q *Queue) EnqueueGenerateBatch(jobID, shotID uuid.UUID) error {
	_, err := q.EnqueueUnique(TaskGenerateBatch,
		GenerateBatchPayload{JobID: jobID.String(), ShotID: shotID.String()},
		"generate:"+jobID.String(), asynq.Queue("generation"))
	return err
}

func (q *Queue) EnqueueGeneratePair(jobID, shotID, startID, endID uuid.UUID) error {
	_, err := q.EnqueueUnique(TaskGeneratePair,
		GeneratePairPayload{
			JobID:        jobID.String(),
			ShotID:       shotID.String(),
			StartEntryID: startID.String(),
			EndEntryID:   endID.String(),
		},
		"generate:"+jobID.String(), asynq.Queue("generation"))
	return err
}

// ──────── Register all handlers ────────

func RegisterHandlers(q *Queue, eng *engine.Coordinator, shotRepo *repository.ShotRepository,
	assetRepo *repository.AssetRepository, genRepo *repository.GenerationRepository,
	gen generation.Generator, notifier EventNotifier) {
	genHandler := NewGenerateHandler(eng, shotRepo, assetRepo, genRepo, gen, notifier)
	q.RegisterHandler(TaskGeneratePair, genHandler)
	q.RegisterHandler(TaskGenerateBatch, genHandler)
	q.RegisterHandler(TaskRegisterAsset, NewRegisterAssetHandler(assetRepo, notifier))
}
