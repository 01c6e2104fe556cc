package snapshot

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/vireo-dev/vireo/pkg/protocol"
)

func testFrame(seq uint64) *protocol.OpsFrame {
	return &protocol.OpsFrame{
		Seq: seq,
		Ops: []protocol.Op{
			{Code: protocol.OpCreateElement, Node: "e1", Tag: "div"},
			{Code: protocol.OpSetAttr, Node: "e1", Key: "class", Value: "card"},
		},
	}
}

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

func TestDiskSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "view-a", testFrame(7)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "view-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seq != 7 {
		t.Errorf("Seq = %d, want 7", got.Seq)
	}
	if len(got.Ops) != 2 || got.Ops[0].Tag != "div" {
		t.Errorf("ops = %+v", got.Ops)
	}
}

func TestDiskSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, "view", testFrame(1))
	store.Save(ctx, "view", testFrame(2))

	got, err := store.Load(ctx, "view")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Seq != 2 {
		t.Errorf("Seq = %d, want 2", got.Seq)
	}
}

func TestDiskLoadMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load = %v, want ErrNotFound", err)
	}
}

func TestDiskListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, "a", testFrame(1))
	store.Save(ctx, "b", testFrame(2))

	names, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v", names)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}

	names, _ = store.List(ctx)
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("names after delete = %v", names)
	}
}

func TestDiskRejectsBadNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := store.Save(ctx, name, testFrame(1)); !errors.Is(err, ErrBadName) {
			t.Errorf("Save(%q) = %v, want ErrBadName", name, err)
		}
		if _, err := store.Load(ctx, name); !errors.Is(err, ErrBadName) {
			t.Errorf("Load(%q) = %v, want ErrBadName", name, err)
		}
	}
}

func TestDiskCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, "x", testFrame(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("Save = %v, want context.Canceled", err)
	}
}
