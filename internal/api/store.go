package api

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/gltfkit/internal/report"
	"github.com/samcharles93/gltfkit/pkg/gltf"
)

type documentRecord struct {
	Info   DocumentInfo
	Doc    *gltf.Document
	Report *report.Report
}

// DocumentStore keeps imported documents in memory, keyed by ID.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*documentRecord
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*documentRecord)}
}

func (s *DocumentStore) Create(doc *gltf.Document, rep *report.Report, size int, now time.Time) DocumentInfo {
	info := DocumentInfo{
		ID:        newDocumentID(),
		Object:    "document",
		CreatedAt: now.Unix(),
		Bytes:     size,
		Binary:    doc.Binary,
		Accessors: len(doc.Accessors),
	}
	s.mu.Lock()
	s.docs[info.ID] = &documentRecord{Info: info, Doc: doc, Report: rep}
	s.mu.Unlock()
	return info
}

func (s *DocumentStore) Get(id string) (*documentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[id]
	return rec, ok
}

// List returns every document, oldest first.
func (s *DocumentStore) List() []DocumentInfo {
	s.mu.RLock()
	out := make([]DocumentInfo, 0, len(s.docs))
	for _, rec := range s.docs {
		out = append(out, rec.Info)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b DocumentInfo) int {
		if a.CreatedAt != b.CreatedAt {
			return int(a.CreatedAt - b.CreatedAt)
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

func (s *DocumentStore) Delete(id string) bool {
	s.mu.Lock()
	rec, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()
	if ok {
		_ = rec.Doc.Close()
	}
	return ok
}

// Close releases every stored document.
func (s *DocumentStore) Close() {
	s.mu.Lock()
	docs := s.docs
	s.docs = make(map[string]*documentRecord)
	s.mu.Unlock()
	for _, rec := range docs {
		_ = rec.Doc.Close()
	}
}

func newDocumentID() string {
	return "doc_" + uuid.NewString()
}
