// Package notes holds the in-memory demo notes exposed as resources and
// created through the create_note tool. Nothing is persisted.
package notes

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"contentful-mcp/internal/mcp"
)

// URIScheme prefixes every note resource URI
const URIScheme = "note:///"

type Note struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// URI returns the resource URI of the note
func (n Note) URI() string {
	return URIScheme + n.ID
}

// Store is safe for concurrent use
type Store struct {
	notes map[string]Note
	mu    sync.RWMutex
}

// NewStore returns a store seeded with the two demo notes
func NewStore() *Store {
	return &Store{
		notes: map[string]Note{
			"1": {ID: "1", Title: "First Note", Content: "This is note 1"},
			"2": {ID: "2", Title: "Second Note", Content: "This is note 2"},
		},
	}
}

// NewEmptyStore returns a store without seed data
func NewEmptyStore() *Store {
	return &Store{notes: make(map[string]Note)}
}

// Create assigns the next id (count+1) and stores the note under one lock
func (s *Store) Create(title, content string) (Note, error) {
	if title == "" || content == "" {
		return Note{}, fmt.Errorf("%w: Title and content are required", mcp.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note := Note{
		ID:      strconv.Itoa(len(s.notes) + 1),
		Title:   title,
		Content: content,
	}
	s.notes[note.ID] = note

	return note, nil
}

func (s *Store) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, exists := s.notes[id]
	if !exists {
		return Note{}, fmt.Errorf("%w: Note %s not found", mcp.ErrNotFound, id)
	}
	return note, nil
}

// List returns a snapshot ordered by numeric id
func (s *Store) List() []Note {
	s.mu.RLock()
	result := make([]Note, 0, len(s.notes))
	for _, note := range s.notes {
		result = append(result, note)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return lessID(result[i].ID, result[j].ID)
	})
	return result
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// IDFromURI extracts the note id from a note:///{id} URI
func IDFromURI(uri string) (string, error) {
	if len(uri) <= len(URIScheme) || uri[:len(URIScheme)] != URIScheme {
		return "", fmt.Errorf("%w: Note %s not found", mcp.ErrNotFound, uri)
	}
	return uri[len(URIScheme):], nil
}

func lessID(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	if errA == nil || errB == nil {
		return errA == nil
	}
	return a < b
}
