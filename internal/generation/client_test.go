package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

func TestHTTPGenerator_PostsRequest(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	req := Request{
		JobID:  uuid.New(),
		ShotID: uuid.New(),
		Mode:   models.GenerationPairwise,
		Frames: []Frame{
			{EntryID: uuid.New(), AssetPath: "/data/a.png", Position: 0},
			{EntryID: uuid.New(), AssetPath: "/data/b.png", Position: 50},
		},
	}

	g := NewHTTPGenerator(srv.URL, "secret")
	if err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
	if got.JobID != req.JobID || len(got.Frames) != 2 {
		t.Errorf("server received %+v, want %+v", got, req)
	}
}

func TestHTTPGenerator_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	if err := g.Generate(context.Background(), Request{JobID: uuid.New()}); err == nil {
		t.Fatal("Generate() should fail on non-2xx status")
	}
}
