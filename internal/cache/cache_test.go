package cache

import (
	"testing"
	"time"

	"github.com/snowyfields/marketboard/internal/model"
)

func summaryFor(itemID int, price int64) *model.Summary {
	return &model.Summary{ItemID: itemID, LowestPrice: &price}
}

func TestStore_PutGet(t *testing.T) {
	store := New(time.Hour)

	store.Put("cn|5333", summaryFor(5333, 120))

	got, ok := store.Get("cn|5333")
	if !ok {
		t.Fatal("expected a hit for cn|5333")
	}
	if got.ItemID != 5333 {
		t.Errorf("expected item 5333, got %d", got.ItemID)
	}
	if got.LowestPrice == nil || *got.LowestPrice != 120 {
		t.Errorf("expected lowest price 120, got %v", got.LowestPrice)
	}

	if _, ok := store.Get("cn|9999"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestStore_ExpiryIsLazy(t *testing.T) {
	store := New(20 * time.Millisecond)

	store.Put("cn|5333", summaryFor(5333, 120))
	time.Sleep(40 * time.Millisecond)

	// The entry is still resident until something reads it.
	if store.Len() != 1 {
		t.Fatalf("expected 1 resident entry before read, got %d", store.Len())
	}

	if _, ok := store.Get("cn|5333"); ok {
		t.Error("expected the expired entry to miss")
	}
	if store.Len() != 0 {
		t.Errorf("expected the expired entry to be deleted on read, got %d entries", store.Len())
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	store := New(0)

	store.Put("cn|5333", summaryFor(5333, 120))
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get("cn|5333"); !ok {
		t.Error("expected a hit with expiry disabled")
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	store := New(time.Hour)

	store.Put("cn|5333", summaryFor(5333, 120))
	store.Put("cn|5333", summaryFor(5333, 90))

	got, ok := store.Get("cn|5333")
	if !ok {
		t.Fatal("expected a hit")
	}
	if *got.LowestPrice != 90 {
		t.Errorf("expected the newer summary, got price %d", *got.LowestPrice)
	}
	if store.Len() != 1 {
		t.Errorf("expected a single entry, got %d", store.Len())
	}
}

func TestBuildKey(t *testing.T) {
	if got := BuildKey("陆行鸟", "5333"); got != "陆行鸟|5333" {
		t.Errorf("unexpected key %q", got)
	}
	if got := BuildKey("solo"); got != "solo" {
		t.Errorf("unexpected key %q", got)
	}
}
