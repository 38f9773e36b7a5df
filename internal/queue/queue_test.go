package queue

import (
	"errors"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AddGet(t *testing.T) {
	store := openStore(t)

	entry := &Entry{
		Direction: "download",
		Server:    "prod",
		Items:     []Item{{Remote: "/srv/a.txt", Local: "/tmp/a.txt"}},
		Action:    "overwrite",
		Size:      1024,
	}
	if err := store.Add(entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("Expected ID to be assigned")
	}
	if entry.Status != StatusPending {
		t.Errorf("Expected status %s, got %s", StatusPending, entry.Status)
	}

	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Server != "prod" || got.Size != 1024 || len(got.Items) != 1 || got.Items[0].Remote != "/srv/a.txt" {
		t.Errorf("Unexpected entry: %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Remove("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Remove, got %v", err)
	}
	if err := store.Update(&Entry{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Update, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	store := openStore(t)
	entry := &Entry{Direction: "upload", Server: "s3"}
	if err := store.Add(entry); err != nil {
		t.Fatal(err)
	}

	entry.Status = StatusComplete
	entry.Transferred = 42
	if err := store.Update(entry); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusComplete || got.Transferred != 42 {
		t.Errorf("Unexpected entry: %+v", got)
	}
	if got.Updated.Before(got.Created) {
		t.Error("Updated before Created")
	}
}

func TestStore_ListOrder(t *testing.T) {
	store := openStore(t)
	for _, server := range []string{"one", "two", "three"} {
		if err := store.Add(&Entry{Server: server}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"one", "two", "three"} {
		if entries[i].Server != want {
			t.Errorf("entries[%d].Server = %s, want %s", i, entries[i].Server, want)
		}
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	store := openStore(t)
	a := &Entry{Server: "a"}
	b := &Entry{Server: "b", Status: StatusRunning}
	c := &Entry{Server: "c", Status: StatusFailed}
	for _, e := range []*Entry{a, b, c} {
		if err := store.Add(e); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	n, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != b.ID {
		t.Errorf("Expected only the running entry to remain, got %+v", entries)
	}
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	entry := &Entry{Server: "persisted"}
	if err := store.Add(entry); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Server != "persisted" {
		t.Errorf("Server = %s", got.Server)
	}
}
