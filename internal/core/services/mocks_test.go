package services

import (
	"context"
	"sync"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// --- Shared course fixture ---

// testStructure builds the shared reference course:
//
//	root
//	├── ch1
//	│   ├── seq1
//	│   │   ├── v1 (video1, html1)
//	│   │   └── v2 (problem1)
//	│   └── seq2
//	│       └── v3 (video2)
//	└── ch2
//	    └── seq3
//	        └── v4 (html2)
func testStructure() *domain.CourseStructure {
	blocks := []*domain.Block{
		{ID: "root", Type: domain.BlockTypeOther, DisplayName: "Demo Course", Descendants: []string{"ch1", "ch2"}},
		{ID: "ch1", Type: domain.BlockTypeChapter, DisplayName: "Chapter 1", Descendants: []string{"seq1", "seq2"}},
		{ID: "ch2", Type: domain.BlockTypeChapter, DisplayName: "Chapter 2", Descendants: []string{"seq3"}},
		{ID: "seq1", Type: domain.BlockTypeSequential, DisplayName: "Section 1.1", Descendants: []string{"v1", "v2"}},
		{ID: "seq2", Type: domain.BlockTypeSequential, DisplayName: "Section 1.2", Descendants: []string{"v3"}},
		{ID: "seq3", Type: domain.BlockTypeSequential, DisplayName: "Section 2.1", Descendants: []string{"v4"}},
		{ID: "v1", Type: domain.BlockTypeVertical, DisplayName: "Unit 1", Descendants: []string{"video1", "html1"}},
		{ID: "v2", Type: domain.BlockTypeVertical, DisplayName: "Unit 2", Descendants: []string{"problem1"}},
		{ID: "v3", Type: domain.BlockTypeVertical, DisplayName: "Unit 3", Descendants: []string{"video2"}},
		{ID: "v4", Type: domain.BlockTypeVertical, DisplayName: "Unit 4", Descendants: []string{"html2"}},
		{ID: "video1", Type: domain.BlockTypeVideo, DisplayName: "Video 1", DownloadURL: "https://cdn.example.com/1.mp4", DownloadSize: 1024},
		{ID: "html1", Type: domain.BlockTypeHTML, DisplayName: "Reading 1"},
		{ID: "problem1", Type: domain.BlockTypeProblem, DisplayName: "Problem 1"},
		{ID: "video2", Type: domain.BlockTypeVideo, DisplayName: "Video 2", DownloadURL: "https://cdn.example.com/2.mp4", DownloadSize: 2048},
		{ID: "html2", Type: domain.BlockTypeHTML, DisplayName: "Reading 2"},
	}
	data := make(map[string]*domain.Block, len(blocks))
	for _, b := range blocks {
		data[b.ID] = b
	}
	return &domain.CourseStructure{
		ID:        "course-v1:Demo+101+2026",
		Root:      "root",
		Name:      "Demo Course",
		BlockData: data,
	}
}

// --- Mock implementations of driven ports ---

// mockCourseAPI implements driven.CourseAPI for testing.
type mockCourseAPI struct {
	mu              sync.Mutex
	structure       *domain.CourseStructure
	fetchErr        error
	fetchCalls      int
	completionErr   error
	completionCalls [][]string
	courses         []domain.EnrolledCourse
}

func (m *mockCourseAPI) FetchCourseStructure(_ context.Context, _ string) (*domain.CourseStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.structure, nil
}

func (m *mockCourseAPI) EnrolledCourses(_ context.Context) ([]domain.EnrolledCourse, error) {
	return m.courses, nil
}

func (m *mockCourseAPI) MarkBlocksCompletion(_ context.Context, _ string, blockIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completionErr != nil {
		return m.completionErr
	}
	m.completionCalls = append(m.completionCalls, blockIDs)
	return nil
}

func (m *mockCourseAPI) completionCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completionCalls)
}

// mockStructureStore implements driven.StructureStore for testing.
type mockStructureStore struct {
	mu         sync.Mutex
	structures map[string]*domain.CourseStructure
	saveErr    error
}

func newMockStructureStore() *mockStructureStore {
	return &mockStructureStore{structures: make(map[string]*domain.CourseStructure)}
}

func (m *mockStructureStore) Save(_ context.Context, structure *domain.CourseStructure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.structures[structure.ID] = structure
	return nil
}

func (m *mockStructureStore) Load(_ context.Context, courseID string) (*domain.CourseStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.structures[courseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockStructureStore) Delete(_ context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.structures, courseID)
	return nil
}

// mockDownloadStore implements driven.DownloadStore for testing.
type mockDownloadStore struct {
	mu      sync.Mutex
	records map[string]domain.DownloadRecord
}

func newMockDownloadStore() *mockDownloadStore {
	return &mockDownloadStore{records: make(map[string]domain.DownloadRecord)}
}

func (m *mockDownloadStore) Save(_ context.Context, record domain.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.BlockID] = record
	return nil
}

func (m *mockDownloadStore) Get(_ context.Context, blockID string) (*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[blockID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (m *mockDownloadStore) ListByCourse(_ context.Context, courseID string) ([]domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DownloadRecord
	for _, record := range m.records {
		if record.CourseID == courseID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockDownloadStore) Delete(_ context.Context, blockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, blockID)
	return nil
}

// mockRunner implements driven.DownloadRunner for testing.
// Enqueued and removed block ids are recorded; Emit pushes a status to
// all subscribers, standing in for the real transfer machinery.
type mockRunner struct {
	mu       sync.Mutex
	enqueued []domain.DownloadRecord
	removed  []string
	cancels  []string
	subs     []chan domain.DownloadStatus
}

func newMockRunner() *mockRunner {
	return &mockRunner{}
}

func (m *mockRunner) Enqueue(_ context.Context, record domain.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, record)
	return nil
}

func (m *mockRunner) Cancel(blockID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels = append(m.cancels, blockID)
}

func (m *mockRunner) Remove(_ context.Context, blockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, blockID)
	return nil
}

func (m *mockRunner) Subscribe() (<-chan domain.DownloadStatus, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan domain.DownloadStatus, 32)
	m.subs = append(m.subs, ch)
	return ch, func() {}
}

func (m *mockRunner) Close() error { return nil }

func (m *mockRunner) emit(status domain.DownloadStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		ch <- status
	}
}

func (m *mockRunner) enqueuedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, record := range m.enqueued {
		ids = append(ids, record.BlockID)
	}
	return ids
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	mu   sync.Mutex
	data map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	i, _ := v.(int)
	return i
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Watch(func()) (func(), error) { return func() {}, nil }

func (m *mockConfigStore) Path() string { return "" }

// mockNetwork implements driven.NetworkMonitor for testing.
type mockNetwork struct {
	online bool
	wifi   bool
}

func (m *mockNetwork) IsOnline() bool { return m.online }
func (m *mockNetwork) IsWifi() bool   { return m.wifi }
