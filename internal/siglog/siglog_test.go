package siglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendWritesOneJSONLinePerSignal(t *testing.T) {
	t.Setenv("SIGNAL_LOG_DIR", t.TempDir())

	entries := []Entry{
		{Instrument: "ARPAUSDT", Kind: "ALERT", Side: "SHORT", Price: 0.0451, BreakoutPct: 0.25},
		{Instrument: "ARPAUSDT", Kind: "ENTRY", Side: "SHORT", Price: 0.0451, BreakoutPct: 0.25, StopPrice: 0.0456, TargetPrice: 0.0442},
	}
	for _, e := range entries {
		if err := Append(e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	f, err := os.Open(DailyFilepath(time.Now()))
	if err != nil {
		t.Fatalf("daily file missing: %v", err)
	}
	defer f.Close()

	var got []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].Kind != "ALERT" || got[1].Kind != "ENTRY" {
		t.Error("expected append order to be preserved")
	}
	if got[1].StopPrice != 0.0456 || got[1].TargetPrice != 0.0442 {
		t.Errorf("entry protection levels lost: %+v", got[1])
	}
	if got[0].Time == "" {
		t.Error("expected the timestamp to be filled in")
	}
}

func TestCompressOlderGzipsOldFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SIGNAL_LOG_DIR", dir)

	old := filepath.Join(dir, "signals", "2026-01-01.txt")
	if err := os.MkdirAll(filepath.Dir(old), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(old, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	fresh := DailyFilepath(time.Now())
	if err := os.WriteFile(fresh, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected the old plain file to be removed")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Error("expected a gzip archive for the old file")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("expected today's file to be untouched")
	}
}

func TestCompressOlderZeroRetentionIsNoOp(t *testing.T) {
	t.Setenv("SIGNAL_LOG_DIR", t.TempDir())
	if err := CompressOlder(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
