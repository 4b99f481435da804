package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-data-service/store"
)

func seedAdapter(t *testing.T) *Adapter {
	t.Helper()
	a := New("_id")
	ctx := context.Background()
	seed := []store.Document{
		{"_id": "p1", "title": "Intro to Go", "votes": 3, "status": "published"},
		{"_id": "p2", "title": "Concurrency patterns", "votes": 7, "status": "published"},
		{"_id": "p3", "title": "Draft notes", "votes": 1, "status": "draft"},
	}
	if _, err := a.InsertMany(ctx, seed); err != nil {
		t.Fatalf("failed to seed adapter: %v", err)
	}
	return a
}

func ids(t *testing.T, rows []any) []string {
	t.Helper()
	out := make([]string, len(rows))
	for i, row := range rows {
		doc, ok := row.(store.Document)
		if !ok {
			t.Fatalf("row %d is %T, want store.Document", i, row)
		}
		out[i] = doc["_id"].(string)
	}
	return out
}

func TestInsertGeneratesID(t *testing.T) {
	a := New("")
	doc, err := a.Insert(context.Background(), store.Document{"title": "no id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, ok := doc.(store.Document)["_id"].(string)
	if !ok || id == "" {
		t.Errorf("inserted document has no generated ID: %v", doc)
	}
}

func TestInsertDoesNotAliasCaller(t *testing.T) {
	a := New("_id")
	ctx := context.Background()
	entity := store.Document{"_id": "x", "title": "original"}
	if _, err := a.Insert(ctx, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entity["title"] = "mutated"

	got, err := a.FindByID(ctx, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(store.Document)["title"] != "original" {
		t.Error("stored document aliases the caller's map")
	}
}

func TestFindInsertionOrderAndWindowing(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	rows, err := a.Find(ctx, store.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3"}, ids(t, rows)); diff != "" {
		t.Errorf("insertion order mismatch (-want +got):\n%s", diff)
	}

	rows, err = a.Find(ctx, store.Params{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p2"}, ids(t, rows)); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}

	rows, err = a.Find(ctx, store.Params{Offset: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("offset past the end returned %d rows", len(rows))
	}
}

func TestFindSort(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	rows, err := a.Find(ctx, store.Params{Sort: []string{"-votes"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p2", "p1", "p3"}, ids(t, rows)); diff != "" {
		t.Errorf("descending sort mismatch (-want +got):\n%s", diff)
	}

	rows, err = a.Find(ctx, store.Params{Sort: []string{"status", "votes"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p3", "p1", "p2"}, ids(t, rows)); diff != "" {
		t.Errorf("multi-field sort mismatch (-want +got):\n%s", diff)
	}
}

func TestFindQueryFilter(t *testing.T) {
	a := seedAdapter(t)

	rows, err := a.Find(context.Background(), store.Params{Query: map[string]any{"status": "draft"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p3"}, ids(t, rows)); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFindQueryCoercesNumbers(t *testing.T) {
	a := seedAdapter(t)

	rows, err := a.Find(context.Background(), store.Params{Query: map[string]any{"votes": "7"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p2"}, ids(t, rows)); diff != "" {
		t.Errorf("coerced filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFindQuerySliceValues(t *testing.T) {
	a := New("_id")
	ctx := context.Background()
	seed := []store.Document{
		{"_id": "p1", "tags": []any{"go", "db"}},
		{"_id": "p2", "tags": []any{"go"}},
		{"_id": "p3", "meta": map[string]any{"k": "v"}},
	}
	if _, err := a.InsertMany(ctx, seed); err != nil {
		t.Fatalf("failed to seed adapter: %v", err)
	}

	rows, err := a.Find(ctx, store.Params{Query: map[string]any{"tags": []any{"go", "db"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p1"}, ids(t, rows)); diff != "" {
		t.Errorf("slice filter mismatch (-want +got):\n%s", diff)
	}

	rows, err = a.Find(ctx, store.Params{Query: map[string]any{"tags": []any{"rust"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("mismatched slice filter returned %d rows, want 0", len(rows))
	}

	rows, err = a.Find(ctx, store.Params{Query: map[string]any{"meta": map[string]any{"k": "v"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p3"}, ids(t, rows)); diff != "" {
		t.Errorf("map filter mismatch (-want +got):\n%s", diff)
	}
}

func TestFindSearch(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	rows, err := a.Find(ctx, store.Params{Search: "CONCURRENCY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p2"}, ids(t, rows)); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}

	// Scoped to a field without the term.
	rows, err = a.Find(ctx, store.Params{Search: "concurrency", SearchFields: []string{"status"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("scoped search matched %d rows, want 0", len(rows))
	}
}

func TestCountIgnoresWindow(t *testing.T) {
	a := seedAdapter(t)

	n, err := a.Count(context.Background(), store.Params{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestFindByIDsAlignmentOmitsAbsent(t *testing.T) {
	a := seedAdapter(t)

	rows, err := a.FindByIDs(context.Background(), []any{"p3", "ghost", "p1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"p3", "p1"}, ids(t, rows)); diff != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", diff)
	}
}

func TestFindByIDMissing(t *testing.T) {
	a := seedAdapter(t)

	doc, err := a.FindByID(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Errorf("got %v, want nil for a missing ID", doc)
	}
}

func TestUpdateByIDMergesPatch(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	doc, err := a.UpdateByID(ctx, "p1", store.Document{"votes": 10, "_id": "hijack"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated := doc.(store.Document)
	if updated["votes"] != 10 {
		t.Errorf("votes = %v, want 10", updated["votes"])
	}
	if updated["_id"] != "p1" {
		t.Errorf("_id = %v, the ID field must never be patched", updated["_id"])
	}
	if updated["title"] != "Intro to Go" {
		t.Error("unpatched fields must survive the merge")
	}

	missing, err := a.UpdateByID(ctx, "ghost", store.Document{"votes": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("got %v, want nil for a missing ID", missing)
	}
}

func TestUpdateMany(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	n, err := a.UpdateMany(ctx, store.Document{"status": "published"}, store.Document{"status": "archived"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("updated %d, want 2", n)
	}

	count, err := a.Count(ctx, store.Params{Query: map[string]any{"status": "archived"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("archived count = %d, want 2", count)
	}
}

func TestRemoveByID(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	doc, err := a.RemoveByID(ctx, "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.(store.Document)["title"] != "Concurrency patterns" {
		t.Errorf("removed document = %v", doc)
	}

	again, err := a.RemoveByID(ctx, "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != nil {
		t.Errorf("second remove returned %v, want nil", again)
	}
}

func TestRemoveManyAndClear(t *testing.T) {
	a := seedAdapter(t)
	ctx := context.Background()

	n, err := a.RemoveMany(ctx, store.Document{"status": "published"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}

	n, err = a.Clear(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d, want 1", n)
	}

	total, err := a.Count(ctx, store.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("count after clear = %d, want 0", total)
	}
}

func TestEntityToObject(t *testing.T) {
	a := New("_id")

	native := store.Document{"a": 1}
	doc, err := a.EntityToObject(native)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc["a"] = 2
	if native["a"] != 1 {
		t.Error("object aliases the native document")
	}

	if _, err := a.EntityToObject("not a document"); err == nil {
		t.Error("expected error for a non-document native")
	}
}
