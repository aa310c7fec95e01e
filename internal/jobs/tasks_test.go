package jobs

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

func posEntry(kind models.EntryKind, pos *int) models.Entry {
	return models.Entry{ID: uuid.New(), Kind: kind, Position: pos}
}

func intp(v int) *int { return &v }

func TestPairs_AdjacentImages(t *testing.T) {
	a := posEntry(models.EntryKindImage, intp(0))
	b := posEntry(models.EntryKindImage, intp(50))
	c := posEntry(models.EntryKindImage, intp(100))

	pairs := Pairs([]models.Entry{a, b, c})
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0][0].ID != a.ID || pairs[0][1].ID != b.ID {
		t.Errorf("first pair = (%s, %s), want (a, b)", pairs[0][0].ID, pairs[0][1].ID)
	}
	if pairs[1][0].ID != b.ID || pairs[1][1].ID != c.ID {
		t.Errorf("second pair = (%s, %s), want (b, c)", pairs[1][0].ID, pairs[1][1].ID)
	}
}

func TestPairs_SkipsVideosAndUnpositioned(t *testing.T) {
	a := posEntry(models.EntryKindImage, intp(0))
	v := posEntry(models.EntryKindVideo, nil)
	u := posEntry(models.EntryKindImage, nil)
	b := posEntry(models.EntryKindImage, intp(50))

	pairs := Pairs([]models.Entry{a, v, u, b})
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(pairs))
	}
	if pairs[0][0].ID != a.ID || pairs[0][1].ID != b.ID {
		t.Errorf("pair = (%s, %s), want (a, b)", pairs[0][0].ID, pairs[0][1].ID)
	}
}

func TestPairs_TooFewImages(t *testing.T) {
	if got := Pairs(nil); got != nil {
		t.Errorf("Pairs(nil) = %v, want nil", got)
	}
	one := []models.Entry{posEntry(models.EntryKindImage, intp(0))}
	if got := Pairs(one); got != nil {
		t.Errorf("Pairs(one image) = %v, want nil", got)
	}
}
