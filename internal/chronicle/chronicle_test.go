package chronicle

import (
	"path/filepath"
	"testing"

	"hearthstead/internal/engine"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndRecent(t *testing.T) {
	j := openTestJournal(t)

	batch := []engine.Event{
		{Tick: 1, Kind: engine.EventLog, Message: "Astrid Voss stored 5 food, 0 stone, 0 wood"},
		{Tick: 2, Kind: engine.EventLog, Message: "Bram Dunmore came of age"},
		{Tick: 3, Kind: engine.EventPowerGain, Amount: 5},
	}
	if err := j.Append(batch); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("recent returned %d events, want 3", len(got))
	}

	// Newest first.
	if got[0].Tick != 3 || got[0].Kind != engine.EventPowerGain || got[0].Amount != 5 {
		t.Errorf("newest event = %+v", got[0])
	}
	if got[2].Tick != 1 || got[2].Message != batch[0].Message {
		t.Errorf("oldest event = %+v", got[2])
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	j := openTestJournal(t)

	var batch []engine.Event
	for i := 1; i <= 20; i++ {
		batch = append(batch, engine.Event{Tick: uint64(i), Kind: engine.EventLog, Message: "tick"})
	}
	if err := j.Append(batch); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := j.Recent(5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d events, want 5", len(got))
	}
	if got[0].Tick != 20 {
		t.Errorf("newest tick = %d, want 20", got[0].Tick)
	}
}

func TestAppendEmptyBatch(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Append(nil); err != nil {
		t.Fatalf("empty append errored: %v", err)
	}
	got, err := j.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("journal holds %d events after empty append", len(got))
	}
}

func TestJournalPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Append([]engine.Event{{Tick: 7, Kind: engine.EventLog, Message: "settled"}}); err != nil {
		t.Fatal(err)
	}
	j.Close()

	j2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j2.Close()

	got, err := j2.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Tick != 7 {
		t.Fatalf("reopened journal returned %+v", got)
	}
}
