package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/httputil"
	"github.com/shotline/shotline/internal/models"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	var kind *models.EntryKind
	if k := r.URL.Query().Get("kind"); k != "" {
		ek := models.EntryKind(k)
		if ek != models.EntryKindImage && ek != models.EntryKindVideo {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "kind must be image or video")
			return
		}
		kind = &ek
	}

	assets, err := s.assetRepo.List(r.Context(), kind)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list assets")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assets)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var asset models.Asset
	if err := httputil.ReadJSON(r, &asset); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}
	if asset.Path == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "path required")
		return
	}
	if asset.Kind != models.EntryKindImage && asset.Kind != models.EntryKindVideo {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "kind must be image or video")
		return
	}

	// Registration is idempotent on path, same as the watcher intake.
	existing, err := s.assetRepo.FindByPath(r.Context(), asset.Path)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to check asset path")
		return
	}
	if existing != nil {
		httputil.WriteJSON(w, http.StatusOK, existing)
		return
	}

	asset.ID = uuid.New()
	if err := s.assetRepo.Create(r.Context(), &asset); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create asset")
		return
	}
	s.wsHub.Broadcast("asset:new", asset)
	httputil.WriteJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.assetRepo.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "asset not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}
