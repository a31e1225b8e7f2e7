package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// executeCommand runs the root command with args and captures output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// swapServices installs test doubles and restores the previous wiring
// when the test finishes.
func swapServices(t *testing.T, s Services) {
	t.Helper()
	prev := Services{
		Loader:     structureLoader,
		Downloads:  downloadManager,
		Completion: completionReporter,
		Auth:       authService,
		API:        courseAPI,
		Config:     configStore,
		Notifier:   courseNotifier,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(prev) })
}

func testStructure() *domain.CourseStructure {
	blocks := []*domain.Block{
		{ID: "root", Type: domain.BlockTypeOther, DisplayName: "Demo Course", Descendants: []string{"ch1"}},
		{ID: "ch1", Type: domain.BlockTypeChapter, DisplayName: "Week 1", Descendants: []string{"seq1"}},
		{ID: "seq1", Type: domain.BlockTypeSequential, DisplayName: "Introduction", Descendants: []string{"v1"}},
		{ID: "v1", Type: domain.BlockTypeVertical, DisplayName: "Unit 1",
			Descendants: []string{"video1", "html1"}, DescendantsType: domain.BlockTypeVideo},
		{ID: "video1", Type: domain.BlockTypeVideo, DisplayName: "Welcome Video",
			DownloadURL: "https://cdn.example.com/welcome.mp4", DownloadSize: 2 << 20},
		{ID: "html1", Type: domain.BlockTypeHTML, DisplayName: "Reading", Completion: 1.0},
	}
	data := make(map[string]*domain.Block, len(blocks))
	for _, b := range blocks {
		data[b.ID] = b
	}
	return &domain.CourseStructure{
		ID:        "course-v1:Demo+101+2026",
		Root:      "root",
		BlockData: data,
		Name:      "Demo Course",
	}
}

// stubLoader is a StructureLoader double serving a fixed structure.
type stubLoader struct {
	structure  *domain.CourseStructure
	preloadErr error
	storeErr   error
	preloads   []string
	fromStore  []string
}

func (l *stubLoader) Preload(_ context.Context, courseID string) error {
	l.preloads = append(l.preloads, courseID)
	return l.preloadErr
}

func (l *stubLoader) PreloadFromStore(_ context.Context, courseID string) error {
	l.fromStore = append(l.fromStore, courseID)
	return l.storeErr
}

func (l *stubLoader) Update(context.Context, string, bool) error { return nil }

func (l *stubLoader) Current() (*domain.CourseStructure, error) {
	if l.structure == nil {
		return nil, domain.ErrNotLoaded
	}
	return l.structure, nil
}

func (l *stubLoader) CurrentForVideos() (*domain.CourseStructure, error) {
	if l.structure == nil {
		return nil, domain.ErrNotLoaded
	}
	return l.structure.VideoStructure(), nil
}

// stubAPI is a CourseAPI double.
type stubAPI struct {
	courses []domain.EnrolledCourse
	err     error
}

func (a *stubAPI) FetchCourseStructure(context.Context, string) (*domain.CourseStructure, error) {
	return nil, domain.ErrConnectivity
}

func (a *stubAPI) EnrolledCourses(context.Context) ([]domain.EnrolledCourse, error) {
	return a.courses, a.err
}

func (a *stubAPI) MarkBlocksCompletion(context.Context, string, []string) error {
	return nil
}

// stubDownloads is a DownloadManager double with canned snapshots. A
// non-nil stream is handed to subscribers for feeding status updates.
type stubDownloads struct {
	snapshot   domain.DownloadSnapshot
	stream     chan domain.DownloadSnapshot
	requested  []string
	removed    []string
	requestErr error
}

func (d *stubDownloads) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (d *stubDownloads) RequestDownload(_ context.Context, scopeBlockID string) error {
	if d.requestErr != nil {
		return d.requestErr
	}
	d.requested = append(d.requested, scopeBlockID)
	return nil
}

func (d *stubDownloads) RequestRemoval(_ context.Context, scopeBlockID string) error {
	d.removed = append(d.removed, scopeBlockID)
	return nil
}

func (d *stubDownloads) Snapshot() domain.DownloadSnapshot {
	return d.snapshot.Clone()
}

func (d *stubDownloads) AggregateState(string) domain.DownloadState {
	return domain.DownloadStateNotDownloaded
}

func (d *stubDownloads) Subscribe() (<-chan domain.DownloadSnapshot, func()) {
	if d.stream != nil {
		return d.stream, func() {}
	}
	ch := make(chan domain.DownloadSnapshot)
	close(ch)
	return ch, func() {}
}
