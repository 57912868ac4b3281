package match

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
)

func testResolver() category.Resolver {
	return category.NewRepository(animalCategory(), colorCategory())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.StartRound(baseTime, Player0, testTurnTime)
	if _, err := s.PlayWord(context.Background(), baseTime.Add(time.Second), Player0, "horse", fixedScorer(5), category.DefaultDistanceTable()); err != nil {
		t.Fatalf("play word: %v", err)
	}
	s.EndTurn(baseTime.Add(2*time.Second), Player0)
	s.StartRound(baseTime.Add(3*time.Second), Player1, testTurnTime)

	codec := Codec{Resolver: testResolver()}
	payload, err := codec.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := codec.Unmarshal(payload)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, want := restored.Snapshot(), s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot round-trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if restored.RoundCategoryName(0) != "animals" {
		t.Fatalf("expected round 0 category restored, got %q", restored.RoundCategoryName(0))
	}
	if !restored.TurnDeadline(Player1).Equal(s.TurnDeadline(Player1)) {
		t.Fatal("expected player 1 deadline preserved")
	}
	if restored.ExpiryTime() == nil || !restored.ExpiryTime().Equal(*s.ExpiryTime()) {
		t.Fatal("expected expiry preserved")
	}
	if restored.FirstTurn() != Player0 {
		t.Fatalf("expected first turn preserved, got %v", restored.FirstTurn())
	}
}

func TestSnapshotRoundTripFreshSession(t *testing.T) {
	codec := Codec{Resolver: testResolver()}
	s := NewSession(3, testExpiryInterval)

	payload, err := codec.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := codec.Unmarshal(payload)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.RoundCount() != 3 {
		t.Fatalf("expected 3 rounds, got %d", restored.RoundCount())
	}
	if restored.ExpiryTime() != nil {
		t.Fatal("expected no expiry on fresh session")
	}
	if !reflect.DeepEqual(restored.Snapshot(), s.Snapshot()) {
		t.Fatal("fresh session round-trip mismatch")
	}
}

func TestSnapshotUnresolvedCategoryDropped(t *testing.T) {
	s := NewSession(2, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	s.SetCategory(1, colorCategory())

	var dropped []string
	codec := Codec{
		Resolver:          category.NewRepository(colorCategory()),
		OnDroppedCategory: func(name string) { dropped = append(dropped, name) },
	}
	payload, err := Codec{Resolver: testResolver()}.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := codec.Unmarshal(payload)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.RoundCategoryName(0) != "" {
		t.Fatalf("expected unresolved round behaviorally unset, got %q", restored.RoundCategoryName(0))
	}
	if restored.RoundCategoryName(1) != "colors" {
		t.Fatalf("expected resolvable round preserved, got %q", restored.RoundCategoryName(1))
	}
	if !reflect.DeepEqual(dropped, []string{"animals"}) {
		t.Fatalf("expected dropped categories reported, got %v", dropped)
	}

	// Starting a turn over the dropped round demands a fresh category choice.
	result := restored.StartRound(baseTime, Player0, testTurnTime)
	if result.Status != StartTurnMustChooseCategory {
		t.Fatalf("expected MustChooseCategory over dropped round, got %v", result.Status)
	}
}

func TestFromSnapshotRejectsBadResolver(t *testing.T) {
	s := NewSession(1, testExpiryInterval)
	s.SetCategory(0, animalCategory())
	snap := s.Snapshot()

	if _, _, err := FromSnapshot(snap, renamingResolver{}); err == nil {
		t.Fatal("expected contract fault for mismatched resolver answer")
	}

	if _, _, err := FromSnapshot(snap, nil); err == nil {
		t.Fatal("expected error for missing resolver")
	}

	snap.Version = 99
	if _, _, err := FromSnapshot(snap, testResolver()); err == nil {
		t.Fatal("expected error for unknown snapshot version")
	}
}

// renamingResolver violates the resolver contract by answering with a
// category under a different name.
type renamingResolver struct{}

func (renamingResolver) Resolve(string) (category.Category, bool) {
	return category.New("impostor", map[string][]string{"x": nil}), true
}
