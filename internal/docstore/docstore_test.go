package docstore

import (
	"context"
	"testing"
)

type testDoc struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// runStoreTests exercises the Store contract shared by both
// implementations: revision-checked create/update/delete and partition
// scans.
func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, _, err := s.Get(ctx, "missing:1")
		if !IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		rev, err := s.Save(ctx, "a:1", "alpha", &testDoc{ID: "a:1", Name: "one"}, NoRevision)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if rev == NoRevision {
			t.Fatal("create returned empty revision")
		}

		var got testDoc
		gotRev, err := GetAs(ctx, s, "a:1", &got)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if gotRev != rev {
			t.Errorf("revision mismatch: save %q, get %q", rev, gotRev)
		}
		if got.Name != "one" {
			t.Errorf("round trip: got %+v", got)
		}
	})

	t.Run("CreateDuplicateConflicts", func(t *testing.T) {
		if _, err := s.Save(ctx, "a:1", "alpha", &testDoc{ID: "a:1"}, NoRevision); !IsConflict(err) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})

	t.Run("UpdateRequiresCurrentRevision", func(t *testing.T) {
		var d testDoc
		rev, err := GetAs(ctx, s, "a:1", &d)
		if err != nil {
			t.Fatalf("get: %v", err)
		}

		d.Count = 1
		newRev, err := s.Save(ctx, "a:1", "alpha", &d, rev)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if newRev == rev {
			t.Fatal("update did not advance the revision")
		}

		// The old revision is now stale.
		d.Count = 2
		if _, err := s.Save(ctx, "a:1", "alpha", &d, rev); !IsConflict(err) {
			t.Fatalf("expected ConflictError on stale write, got %v", err)
		}

		var got testDoc
		if _, err := GetAs(ctx, s, "a:1", &got); err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Count != 1 {
			t.Errorf("stale write leaked: count = %d", got.Count)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		if _, err := s.Save(ctx, "missing:2", "alpha", &testDoc{}, Revision("1")); !IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("QueryByPartition", func(t *testing.T) {
		for _, id := range []string{"b:2", "b:1", "b:3"} {
			if _, err := s.Save(ctx, id, "beta", &testDoc{ID: id}, NoRevision); err != nil {
				t.Fatalf("create %s: %v", id, err)
			}
		}

		rows, err := s.QueryByPartition(ctx, "beta")
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		// Ordered by id regardless of insertion order.
		for i, want := range []string{"b:1", "b:2", "b:3"} {
			if rows[i].ID != want {
				t.Errorf("rows[%d].ID = %q, want %q", i, rows[i].ID, want)
			}
		}

		rows, err = s.QueryByPartition(ctx, "gamma")
		if err != nil {
			t.Fatalf("query empty partition: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("empty partition returned %d rows", len(rows))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		rev, err := s.Save(ctx, "c:1", "gamma", &testDoc{ID: "c:1"}, NoRevision)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if err := s.Delete(ctx, "c:1", Revision("999")); !IsConflict(err) {
			t.Fatalf("expected ConflictError on stale delete, got %v", err)
		}
		if err := s.Delete(ctx, "c:1", rev); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, _, err := s.Get(ctx, "c:1"); !IsNotFound(err) {
			t.Fatalf("expected NotFoundError after delete, got %v", err)
		}
		if err := s.Delete(ctx, "c:1", rev); !IsNotFound(err) {
			t.Fatalf("expected NotFoundError on double delete, got %v", err)
		}
	})
}
