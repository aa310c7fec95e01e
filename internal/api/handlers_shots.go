package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/httputil"
	"github.com/shotline/shotline/internal/jobs"
	"github.com/shotline/shotline/internal/models"
)

// ──────────────────── Shots ────────────────────

func (s *Server) handleListShots(w http.ResponseWriter, r *http.Request) {
	shots, err := s.shotRepo.List(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list shots")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shots)
}

func (s *Server) handleCreateShot(w http.ResponseWriter, r *http.Request) {
	var shot models.Shot
	if err := httputil.ReadJSON(r, &shot); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if shot.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "name required")
		return
	}
	shot.ID = uuid.New()

	if err := s.shotRepo.Create(r.Context(), &shot); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create shot")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, shot)
}

func (s *Server) handleGetShot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	shot, err := s.shotRepo.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "shot not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shot)
}

func (s *Server) handleUpdateShot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	shot, err := s.shotRepo.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "shot not found")
		return
	}
	if err := httputil.ReadJSON(r, shot); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	shot.ID = id

	if err := s.shotRepo.Update(r.Context(), shot); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to update shot")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, shot)
}

func (s *Server) handleDeleteShot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.shotRepo.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "shot not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// ──────────────────── Entries ────────────────────

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var filter engine.ListFilter
	if r.URL.Query().Get("positioned") == "true" {
		filter.PositionedOnly = true
	}
	if k := r.URL.Query().Get("kind"); k != "" {
		kind := models.EntryKind(k)
		if kind != models.EntryKindImage && kind != models.EntryKindVideo {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "kind must be image or video")
			return
		}
		filter.Kind = &kind
	}

	entries, err := s.engine.Entries(r.Context(), id, filter)
	if err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (s *Server) handleInsertEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		AssetID  uuid.UUID        `json:"asset_id"`
		Kind     models.EntryKind `json:"kind"`
		Position *int             `json:"position,omitempty"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if req.AssetID == uuid.Nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "asset_id required")
		return
	}
	if req.Kind == "" {
		req.Kind = models.EntryKindImage
	}

	entryID, err := s.engine.Insert(r.Context(), id, req.AssetID, req.Kind, req.Position)
	if err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"entry_id": entryID.String()})
}

func (s *Server) handleInsertBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Items []struct {
			AssetID uuid.UUID        `json:"asset_id"`
			Kind    models.EntryKind `json:"kind"`
		} `json:"items"`
		Start *int `json:"start,omitempty"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "items required")
		return
	}

	items := make([]engine.BatchItem, len(req.Items))
	for i, it := range req.Items {
		if it.AssetID == uuid.Nil {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "asset_id required for every item")
			return
		}
		kind := it.Kind
		if kind == "" {
			kind = models.EntryKindImage
		}
		items[i] = engine.BatchItem{AssetID: it.AssetID, Kind: kind}
	}

	entryIDs, err := s.engine.InsertBatch(r.Context(), id, items, req.Start)
	if err != nil {
		httputil.WriteEngineError(w, err)
		return
	}

	ids := make([]string, len(entryIDs))
	for i, eid := range entryIDs {
		ids[i] = eid.String()
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]interface{}{"entry_ids": ids})
}

func (s *Server) handleDuplicateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	entryID, err := s.engine.Duplicate(r.Context(), id)
	if err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"entry_id": entryID.String()})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.engine.Delete(r.Context(), id); err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryIDs []uuid.UUID `json:"entry_ids"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if len(req.EntryIDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "entry_ids required")
		return
	}

	if err := s.engine.BatchDelete(r.Context(), req.EntryIDs); err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"deleted": len(req.EntryIDs)})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		EntryIDs []uuid.UUID `json:"entry_ids"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if len(req.EntryIDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "entry_ids required")
		return
	}

	if err := s.engine.Reorder(r.Context(), id, req.EntryIDs); err != nil {
		httputil.WriteEngineError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// ──────────────────── Generation ────────────────────

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Mode models.GenerationMode `json:"mode"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if req.Mode != models.GenerationBatch && req.Mode != models.GenerationPairwise {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "mode must be batch or pairwise")
		return
	}

	if _, err := s.shotRepo.GetByID(r.Context(), id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "shot not found")
		return
	}

	switch req.Mode {
	case models.GenerationBatch:
		job := &models.GenerationJob{
			ID:     uuid.New(),
			ShotID: id,
			Mode:   models.GenerationBatch,
			Status: models.GenerationPending,
		}
		if err := s.genRepo.Create(r.Context(), job); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create generation job")
			return
		}
		if err := s.jobQueue.EnqueueGenerateBatch(job.ID, id); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to queue generation job")
			return
		}
		httputil.WriteJSON(w, http.StatusAccepted, []*models.GenerationJob{job})

	case models.GenerationPairwise:
		entries, err := s.engine.Entries(r.Context(), id, engine.ListFilter{})
		if err != nil {
			httputil.WriteEngineError(w, err)
			return
		}
		pairs := jobs.Pairs(entries)
		if len(pairs) == 0 {
			httputil.WriteError(w, http.StatusUnprocessableEntity, httputil.CodeBadRequest,
				"shot needs at least two positioned images for pairwise generation")
			return
		}

		created := make([]*models.GenerationJob, 0, len(pairs))
		for _, pair := range pairs {
			startID, endID := pair[0].ID, pair[1].ID
			job := &models.GenerationJob{
				ID:           uuid.New(),
				ShotID:       id,
				Mode:         models.GenerationPairwise,
				StartEntryID: &startID,
				EndEntryID:   &endID,
				Status:       models.GenerationPending,
			}
			if err := s.genRepo.Create(r.Context(), job); err != nil {
				httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create generation job")
				return
			}
			if err := s.jobQueue.EnqueueGeneratePair(job.ID, id, startID, endID); err != nil {
				httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to queue generation job")
				return
			}
			created = append(created, job)
		}
		httputil.WriteJSON(w, http.StatusAccepted, created)
	}
}

func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	jobsList, err := s.genRepo.ListByShot(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list generation jobs")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, jobsList)
}

// parseID pulls a UUID path parameter, writing the error response itself.
func parseID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
