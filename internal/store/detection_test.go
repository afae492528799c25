package store

import (
	"testing"
)

func createSession(t *testing.T, s *Store) string {
	t.Helper()
	sess := &Session{Source: "test"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Sessions().Create() error = %v", err)
	}
	return sess.ID
}

func TestDetectionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	id := createSession(t, s)

	d := &Detection{SessionID: id, FrameIndex: 3, Gesture: "Victory", Fingers: 2, Tips: 2}
	if err := s.Detections().Create(d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.ID == 0 {
		t.Error("Create() did not set ID")
	}
	if d.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestDetectionRepository_RequiresSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Detections().Create(&Detection{SessionID: "missing", Gesture: "Fist"})
	if err == nil {
		t.Error("Create() with unknown session should fail the foreign key")
	}
}

func TestDetectionRepository_BatchAndList(t *testing.T) {
	s := newTestStore(t)
	id := createSession(t, s)
	other := createSession(t, s)

	batch := []*Detection{
		{SessionID: id, FrameIndex: 10, Gesture: "Open Palm", Fingers: 5, Tips: 5},
		{SessionID: id, FrameIndex: 0, Gesture: "No Hand Detected"},
		{SessionID: id, FrameIndex: 4, Gesture: "Open Palm", Fingers: 5, Tips: 4},
		{SessionID: other, FrameIndex: 1, Gesture: "Fist"},
	}
	if err := s.Detections().CreateBatch(batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	for i, d := range batch {
		if d.ID == 0 {
			t.Errorf("batch[%d].ID not set", i)
		}
	}

	list, err := s.Detections().ListBySession(id)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(ListBySession()) = %d, want 3", len(list))
	}
	for i, want := range []int{0, 4, 10} {
		if list[i].FrameIndex != want {
			t.Errorf("list[%d].FrameIndex = %d, want %d", i, list[i].FrameIndex, want)
		}
	}
	if list[2].Fingers != 5 || list[2].Tips != 5 {
		t.Errorf("list[2] = %+v, want 5 fingers and 5 tips", list[2])
	}
}

func TestDetectionRepository_BatchRollsBack(t *testing.T) {
	s := newTestStore(t)
	id := createSession(t, s)

	batch := []*Detection{
		{SessionID: id, FrameIndex: 0, Gesture: "Fist"},
		{SessionID: "missing", FrameIndex: 1, Gesture: "Fist"},
	}
	if err := s.Detections().CreateBatch(batch); err == nil {
		t.Fatal("CreateBatch() with a bad row should fail")
	}

	list, err := s.Detections().ListBySession(id)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len(ListBySession()) = %d, want 0 after rollback", len(list))
	}
}

func TestDetectionRepository_CountByGesture(t *testing.T) {
	s := newTestStore(t)
	id := createSession(t, s)

	for i, g := range []string{"Fist", "Victory", "Fist", "Thumbs Up", "Fist"} {
		if err := s.Detections().Create(&Detection{SessionID: id, FrameIndex: i, Gesture: g}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	counts, err := s.Detections().CountByGesture(id)
	if err != nil {
		t.Fatalf("CountByGesture() error = %v", err)
	}

	want := map[string]int{"Fist": 3, "Victory": 1, "Thumbs Up": 1}
	if len(counts) != len(want) {
		t.Fatalf("CountByGesture() = %v, want %v", counts, want)
	}
	for g, n := range want {
		if counts[g] != n {
			t.Errorf("counts[%q] = %d, want %d", g, counts[g], n)
		}
	}

	empty, err := s.Detections().CountByGesture("missing")
	if err != nil {
		t.Fatalf("CountByGesture(missing) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("CountByGesture(missing) = %v, want empty", empty)
	}
}
