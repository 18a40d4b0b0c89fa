// Package summary aggregates one day of the signal log into a CSV that
// the orchestrator ships through the notifier after the daily cutoff.
package summary

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"band-trading-bot/internal/siglog"
)

type aggRow struct {
	Instrument  string
	Alerts      int
	Entries     int
	Longs       int
	Shorts      int
	BreakoutSum float64
	BreakoutN   int
}

func csvPath(t time.Time) string {
	return filepath.Join(siglog.Dir(), "summary", t.Format("2006-01-02")+".csv")
}

// SummarizeDay reads the day's signal file and writes the aggregate
// CSV. Returns "" when there is nothing to summarize.
func SummarizeDay(t time.Time) (string, error) {
	inPath := siglog.DailyFilepath(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e siglog.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		row := aggs[e.Instrument]
		if row == nil {
			row = &aggRow{Instrument: e.Instrument}
			aggs[e.Instrument] = row
		}
		switch e.Kind {
		case "ALERT":
			row.Alerts++
		case "ENTRY":
			row.Entries++
		}
		switch e.Side {
		case "LONG":
			row.Longs++
		case "SHORT":
			row.Shorts++
		}
		if e.BreakoutPct != 0 {
			row.BreakoutSum += e.BreakoutPct
			row.BreakoutN++
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"instrument", "alerts", "entries", "long", "short", "avg_breakout_pct"}); err != nil {
		return "", err
	}
	for _, k := range keys {
		r := aggs[k]
		var avg float64
		if r.BreakoutN > 0 {
			avg = r.BreakoutSum / float64(r.BreakoutN)
		}
		rec := []string{
			r.Instrument,
			strconv.Itoa(r.Alerts),
			strconv.Itoa(r.Entries),
			strconv.Itoa(r.Longs),
			strconv.Itoa(r.Shorts),
			fmt.Sprintf("%.4f", avg),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

func SummarizeToday() (string, error) { return SummarizeDay(time.Now()) }

// ShouldRunNow reports whether the cutoff ("HH:MM", local time) has
// passed today and today's CSV does not yet exist.
func ShouldRunNow(cutoff string) (bool, string) {
	now := time.Now()
	t, err := time.Parse("15:04", cutoff)
	if err != nil {
		return false, ""
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	outPath := csvPath(now)
	if now.After(at) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}
