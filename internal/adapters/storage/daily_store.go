package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

const (
	fileExt    = ".jsonl"
	dateLayout = "2006-01-02"

	// long headlines with embedded summaries exceed bufio's 64KB default
	maxLineSize = 1 << 20
)

// ErrNoData is returned when the data directory or its files do not exist
var ErrNoData = errors.New("no data files")

// DailyStore keeps ingested articles as one JSONL file per day
type DailyStore struct {
	dir string
	now func() time.Time
}

// NewDailyStore creates a store rooted at dir. The directory is created lazily
// on first append so readers can tell "never ingested" apart from "empty".
func NewDailyStore(dir string) *DailyStore {
	return &DailyStore{dir: dir, now: time.Now}
}

// WithClock overrides the clock used to pick today's file
func (s *DailyStore) WithClock(now func() time.Time) *DailyStore {
	s.now = now
	return s
}

// Dir returns the data directory
func (s *DailyStore) Dir() string {
	return s.dir
}

// AbsDir returns the absolute data directory path, falling back to Dir
func (s *DailyStore) AbsDir() string {
	abs, err := filepath.Abs(s.dir)
	if err != nil {
		return s.dir
	}
	return abs
}

// TodayPath returns the path of today's file
func (s *DailyStore) TodayPath() string {
	return s.PathFor(s.now())
}

// PathFor returns the file path for the given day
func (s *DailyStore) PathFor(day time.Time) string {
	return filepath.Join(s.dir, day.Format(dateLayout)+fileExt)
}

// Exists reports whether the data directory exists
func (s *DailyStore) Exists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// LoadIDs returns the ids already present in the file at path.
// A missing file yields an empty set; malformed lines are skipped.
func (s *DailyStore) LoadIDs(path string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	err := s.scan(path, func(line []byte) bool {
		var record struct {
			ID *string `json:"id"`
		}
		if err := json.Unmarshal(line, &record); err == nil && record.ID != nil {
			ids[*record.ID] = struct{}{}
		}
		return true
	})
	if errors.Is(err, fs.ErrNotExist) {
		return ids, nil
	}
	if err != nil {
		return ids, err
	}

	return ids, nil
}

// Append writes articles to today's file, one JSON object per line.
// Returns the path written to.
func (s *DailyStore) Append(articles []models.Article) (string, error) {
	path := s.TodayPath()
	return path, s.AppendTo(path, articles)
}

// AppendTo writes articles to the file at path, one JSON object per line
func (s *DailyStore) AppendTo(path string, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range articles {
		if err := enc.Encode(&articles[i]); err != nil {
			return fmt.Errorf("failed to encode article %s: %w", articles[i].ID, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// ListFiles returns the daily files in the data directory
func (s *DailyStore) ListFiles() ([]models.DataFile, error) {
	paths, err := s.globFiles()
	if err != nil {
		return nil, err
	}

	files := make([]models.DataFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logger.Warn("failed to stat data file", zap.String("path", p), zap.Error(err))
			continue
		}
		files = append(files, models.DataFile{
			Name:     info.Name(),
			Size:     info.Size(),
			Modified: float64(info.ModTime().UnixNano()) / 1e9,
		})
	}

	return files, nil
}

// LatestFile returns the newest daily file by name (YYYY-MM-DD sorts chronologically)
func (s *DailyStore) LatestFile() (string, error) {
	if !s.Exists() {
		logger.Warn("data directory not found", zap.String("dir", s.dir))
		return "", ErrNoData
	}

	paths, err := s.globFiles()
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", ErrNoData
	}

	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths[0], nil
}

// ReadArticles streams records of the file at path through visit, in file order.
// Malformed lines are skipped. Returning false from visit stops the scan.
func (s *DailyStore) ReadArticles(path string, visit func(record map[string]any) bool) error {
	return s.scan(path, func(line []byte) bool {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			return true
		}
		return visit(record)
	})
}

func (s *DailyStore) globFiles() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list data files: %w", err)
	}
	return paths, nil
}

func (s *DailyStore) scan(path string, fn func(line []byte) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !fn(line) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return nil
}
