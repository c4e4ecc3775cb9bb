package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// historyDocument is the on-disk layout of the history file. LastID is the
// id counter; it only grows.
type historyDocument struct {
	LastID  int64            `json:"last_id"`
	History []internal.Entry `json:"history"`
}

// FileStorage keeps history and goals in two JSON documents. Every mutation
// re-reads the document, changes it and atomically replaces the file while
// holding mu, so writers inside one process are serialized and readers in
// other processes only ever see complete documents.
type FileStorage struct {
	mu          sync.RWMutex
	historyFile string
	goalsFile   string
	logger      internal.Logger
}

func NewFileStorage(historyFile, goalsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		historyFile: historyFile,
		goalsFile:   goalsFile,
		logger:      logger,
	}

	// fail fast on a corrupt document rather than on the first request
	if _, err := s.loadHistory(); err != nil {
		logger.Errorf("storage: failed to load history: %v", err)
		return nil, err
	}
	if _, err := s.loadGoals(); err != nil {
		logger.Errorf("storage: failed to load goals: %v", err)
		return nil, err
	}
	return s, nil
}

func (s *FileStorage) loadHistory() (*historyDocument, error) {
	doc := &historyDocument{History: []internal.Entry{}}
	file, err := os.Open(s.historyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, err
	}
	if doc.History == nil {
		doc.History = []internal.Entry{}
	}
	// documents written without a counter derive it once from the ids present
	for _, e := range doc.History {
		if e.ID > doc.LastID {
			doc.LastID = e.ID
		}
	}
	return doc, nil
}

func (s *FileStorage) loadGoals() ([]internal.Goal, error) {
	file, err := os.Open(s.goalsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []internal.Goal{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var goals []internal.Goal
	if err := json.NewDecoder(file).Decode(&goals); err != nil {
		if errors.Is(err, io.EOF) {
			return []internal.Goal{}, nil
		}
		return nil, err
	}
	if goals == nil {
		goals = []internal.Goal{}
	}
	return goals, nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

// --- EntryRepository ---
func (s *FileStorage) CreateEntry(ctx context.Context, entry internal.Entry) (internal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadHistory()
	if err != nil {
		s.logger.Errorf("storage: failed to load history: %v", err)
		return internal.Entry{}, err
	}

	doc.LastID++
	stored := entry.Clone()
	stored.ID = doc.LastID
	doc.History = append(doc.History, stored)

	if err := atomicWriteFileJSON(s.historyFile, doc); err != nil {
		s.logger.Errorf("storage: failed to write history: %v", err)
		return internal.Entry{}, err
	}
	return stored.Clone(), nil
}

func (s *FileStorage) ListEntries(ctx context.Context) ([]internal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.loadHistory()
	if err != nil {
		s.logger.Errorf("storage: failed to load history: %v", err)
		return nil, err
	}
	return doc.History, nil
}

func (s *FileStorage) PatchEntry(ctx context.Context, id int64, patch internal.EntryPatch) (internal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadHistory()
	if err != nil {
		s.logger.Errorf("storage: failed to load history: %v", err)
		return internal.Entry{}, err
	}

	for i := range doc.History {
		if doc.History[i].ID != id {
			continue
		}
		changed, err := patch.Apply(&doc.History[i])
		if err != nil {
			return internal.Entry{}, err
		}
		if !changed {
			return doc.History[i].Clone(), nil
		}
		if err := atomicWriteFileJSON(s.historyFile, doc); err != nil {
			s.logger.Errorf("storage: failed to write history: %v", err)
			return internal.Entry{}, err
		}
		return doc.History[i].Clone(), nil
	}
	return internal.Entry{}, internal.ErrNotFound
}

// --- GoalRepository ---
func (s *FileStorage) SetGoals(ctx context.Context, goals []internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if goals == nil {
		goals = make([]internal.Goal, 0)
	}
	if err := atomicWriteFileJSON(s.goalsFile, goals); err != nil {
		s.logger.Errorf("storage: failed to write goals: %v", err)
		return err
	}
	return nil
}

func (s *FileStorage) GetGoals(ctx context.Context) ([]internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadGoals()
}

func (s *FileStorage) Close() error { return nil }

// --- Compile-time assertions ---
var _ EntryRepository = (*FileStorage)(nil)
var _ GoalRepository = (*FileStorage)(nil)
var _ Store = (*FileStorage)(nil)
