package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"quizlens/internal/domain"
)

// LeaderboardHeader is the column order of the leaderboard file.
var LeaderboardHeader = []string{"Name", "Score", "Topic", "Difficulty", "DateTime"}

// Leaderboard is an append-only CSV file of attempt records.
// Appends from every session go through one mutex.
type Leaderboard struct {
	path string
	mu   sync.Mutex
}

func NewLeaderboard(path string) *Leaderboard {
	return &Leaderboard{path: path}
}

// Path returns the file location.
func (l *Leaderboard) Path() string { return l.path }

// Append adds one row, writing the header first when the file is new.
func (l *Leaderboard) Append(ctx context.Context, rec domain.AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	isNew := errors.Is(statErr, fs.ErrNotExist)
	if isNew {
		if dir := filepath.Dir(l.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create leaderboard dir: %w", err)
			}
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open leaderboard: %w", err)
	}

	w := csv.NewWriter(f)
	if isNew {
		_ = w.Write(LeaderboardHeader)
	}
	_ = w.Write([]string{rec.Name, rec.Score, rec.Topic, string(rec.Difficulty), rec.DateTime})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write leaderboard: %w", err)
	}
	return f.Close()
}

// Recent returns up to n records, newest DateTime first. n <= 0 returns all.
// A missing or unreadable file is domain.ErrLeaderboardUnavailable.
func (l *Leaderboard) Recent(ctx context.Context, n int) ([]domain.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	rows, err := readAll(l.path)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLeaderboardUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrLeaderboardUnavailable)
	}

	cols := columnIndex(rows[0])
	for _, name := range LeaderboardHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", domain.ErrLeaderboardUnavailable, name)
		}
	}

	records := make([]domain.AttemptRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(name string) string {
			if i := cols[name]; i < len(row) {
				return row[i]
			}
			return ""
		}
		records = append(records, domain.AttemptRecord{
			Name:       get("Name"),
			Score:      get("Score"),
			Topic:      get("Topic"),
			Difficulty: domain.Difficulty(get("Difficulty")),
			DateTime:   get("DateTime"),
		})
	}

	// DateTimeLayout sorts lexically in time order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateTime > records[j].DateTime
	})
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	return cols
}
