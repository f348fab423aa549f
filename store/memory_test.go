package store

import (
	"context"
	"testing"
	"time"

	"github.com/goksnair/careerframe/core"
)

func testSession(id string) *core.Session {
	return &core.Session{
		ID:        id,
		UserID:    "u-1",
		CreatedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Phase:     core.PhaseIntroduction,
		Turns: []core.Turn{
			{Seq: 1, Sender: core.SenderCoach, Text: "Welcome."},
		},
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if got, err := m.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("absent session: got (%v, %v), want (nil, nil)", got, err)
	}

	s := testSession("s-1")
	if err := m.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := m.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "s-1" || len(got.Turns) != 1 {
		t.Errorf("round trip mangled session: %+v", got)
	}

	if err := m.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := m.Get(ctx, "s-1"); got != nil {
		t.Errorf("session survived delete")
	}
}

func TestMemoryCopiesOnBothSides(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s := testSession("s-1")
	if err := m.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's copy after Put must not affect the store.
	s.Turns = append(s.Turns, core.Turn{Seq: 2, Sender: core.SenderUser, Text: "hi"})

	got, _ := m.Get(ctx, "s-1")
	if len(got.Turns) != 1 {
		t.Errorf("store shared state with caller after Put")
	}

	// Mutating a fetched copy must not affect later reads.
	got.Turns[0].Text = "tampered"
	again, _ := m.Get(ctx, "s-1")
	if again.Turns[0].Text != "Welcome." {
		t.Errorf("store shared state with caller after Get")
	}
}
