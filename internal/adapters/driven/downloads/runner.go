package downloads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

const (
	// DefaultWorkers is the number of concurrent transfers.
	DefaultWorkers = 2

	// queueSize bounds the pending-task queue.
	queueSize = 64

	// subscriberBuffer is the per-subscriber status channel depth.
	subscriberBuffer = 16

	// progressInterval is the minimum time between progress emissions
	// for a single transfer.
	progressInterval = 500 * time.Millisecond

	// partSuffix marks an incomplete transfer on disk.
	partSuffix = ".part"
)

// Ensure Runner implements the port.
var _ driven.DownloadRunner = (*Runner)(nil)

// task is one unit of transfer work.
type task struct {
	id     string
	record domain.DownloadRecord
	cancel context.CancelFunc
	ctx    context.Context
}

// Runner is a worker-pool HTTP downloader.
type Runner struct {
	store  driven.DownloadStore
	client *http.Client
	jobs   chan *task

	mu      sync.Mutex
	active  map[string]*task // keyed by block id, queued or transferring
	done    map[string]domain.DownloadRecord
	subs    map[int]chan domain.DownloadStatus
	nextSub int
	closed  bool

	wg sync.WaitGroup
}

// NewRunner creates a runner with the given concurrency and starts its
// workers. Pass workers <= 0 for the default. Previously completed
// records are loaded lazily through the store on Enqueue.
func NewRunner(store driven.DownloadStore, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	r := &Runner{
		store:  store,
		client: &http.Client{}, // no overall timeout, transfers are long-lived
		jobs:   make(chan *task, queueSize),
		active: make(map[string]*task),
		done:   make(map[string]domain.DownloadRecord),
		subs:   make(map[int]chan domain.DownloadStatus),
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

// Enqueue schedules a block's asset for download.
func (r *Runner) Enqueue(ctx context.Context, record domain.DownloadRecord) error {
	if record.BlockID == "" || record.URL == "" {
		return fmt.Errorf("enqueue download: %w", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New("runner is closed")
	}
	if _, inFlight := r.active[record.BlockID]; inFlight {
		r.mu.Unlock()
		r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: domain.DownloadStateWaiting})
		return nil
	}
	if finished, ok := r.done[record.BlockID]; ok {
		r.mu.Unlock()
		r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: finished.State, Progress: 1.0})
		return nil
	}

	// A completed record from an earlier run also makes this a no-op.
	if stored, err := r.store.Get(ctx, record.BlockID); err == nil && stored.State == domain.DownloadStateDownloaded {
		r.done[record.BlockID] = *stored
		r.mu.Unlock()
		r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: domain.DownloadStateDownloaded, Progress: 1.0})
		return nil
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	t := &task{id: uuid.NewString(), record: record, ctx: taskCtx, cancel: cancel}
	r.active[record.BlockID] = t
	r.mu.Unlock()

	record.State = domain.DownloadStateWaiting
	if err := r.store.Save(ctx, record); err != nil {
		logger.Warn("downloads: persisting queued record for %s failed: %v", record.BlockID, err)
	}
	r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: domain.DownloadStateWaiting})

	select {
	case r.jobs <- t:
		return nil
	default:
		r.drop(t)
		return fmt.Errorf("enqueue download %s: queue full", record.BlockID)
	}
}

// Cancel removes a block from the active queue.
func (r *Runner) Cancel(blockID string) {
	r.mu.Lock()
	t, ok := r.active[blockID]
	r.mu.Unlock()
	if !ok {
		return
	}
	logger.Debug("downloads: cancelling %s (task %s)", blockID, t.id)
	t.cancel()
}

// Remove deletes the local copy and purges the record for a block.
func (r *Runner) Remove(ctx context.Context, blockID string) error {
	r.Cancel(blockID)

	r.mu.Lock()
	delete(r.done, blockID)
	r.mu.Unlock()

	record, err := r.store.Get(ctx, blockID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove download %s: %w", blockID, err)
	}

	if record.Path != "" {
		if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove download file %s: %w", record.Path, err)
		}
		os.Remove(record.Path + partSuffix) //nolint:errcheck
	}
	if err := r.store.Delete(ctx, blockID); err != nil {
		return fmt.Errorf("purge download record %s: %w", blockID, err)
	}

	r.emit(domain.DownloadStatus{BlockID: blockID, State: domain.DownloadStateNotDownloaded})
	return nil
}

// Subscribe returns a channel of status emissions and a cancel function.
func (r *Runner) Subscribe() (<-chan domain.DownloadStatus, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan domain.DownloadStatus, subscriberBuffer)
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close stops all transfers and releases resources.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for _, t := range r.active {
		t.cancel()
	}
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()
	return nil
}

// worker consumes tasks until the queue closes.
func (r *Runner) worker() {
	defer r.wg.Done()
	for t := range r.jobs {
		if t.ctx.Err() != nil {
			r.drop(t)
			continue
		}
		r.run(t)
	}
}

// run performs one transfer end to end.
func (r *Runner) run(t *task) {
	record := t.record
	record.Path = targetPath(record)
	record.State = domain.DownloadStateDownloading
	if err := r.store.Save(t.ctx, record); err != nil {
		logger.Warn("downloads: persisting record for %s failed: %v", record.BlockID, err)
	}
	r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: domain.DownloadStateDownloading})

	err := r.transfer(t.ctx, &record)
	switch {
	case err == nil:
		record.State = domain.DownloadStateDownloaded
		r.mu.Lock()
		r.done[record.BlockID] = record
		delete(r.active, record.BlockID)
		r.mu.Unlock()
		if err := r.store.Save(context.Background(), record); err != nil {
			logger.Warn("downloads: persisting completed record for %s failed: %v", record.BlockID, err)
		}
		r.emit(domain.DownloadStatus{BlockID: record.BlockID, State: domain.DownloadStateDownloaded, Progress: 1.0})
		logger.Debug("downloads: %s finished (task %s)", record.BlockID, t.id)

	case errors.Is(err, context.Canceled):
		// Keep the partial file for resume, drop the queue entry.
		r.drop(t)
		logger.Debug("downloads: %s cancelled (task %s)", record.BlockID, t.id)

	default:
		r.drop(t)
		logger.Warn("downloads: %s failed: %v", record.BlockID, err)
	}
}

// drop abandons a task: the record is purged and not-downloaded is
// emitted so screens fall back to the initial state.
func (r *Runner) drop(t *task) {
	r.mu.Lock()
	delete(r.active, t.record.BlockID)
	r.mu.Unlock()

	if err := r.store.Delete(context.Background(), t.record.BlockID); err != nil {
		logger.Warn("downloads: purging record for %s failed: %v", t.record.BlockID, err)
	}
	r.emit(domain.DownloadStatus{BlockID: t.record.BlockID, State: domain.DownloadStateNotDownloaded})
}

// transfer streams the asset to record.Path, resuming a partial file
// when the server honours Range requests.
func (r *Runner) transfer(ctx context.Context, record *domain.DownloadRecord) error {
	if err := os.MkdirAll(filepath.Dir(record.Path), 0700); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	partPath := record.Path + partSuffix

	var offset int64
	if info, err := os.Stat(partPath); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.URL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		// Resuming where the partial file left off.
	case http.StatusOK:
		// Full body, any partial data is stale.
		offset = 0
	default:
		return fmt.Errorf("download %s: unexpected status %d", record.URL, resp.StatusCode)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if offset == 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	out, err := os.OpenFile(partPath, flags, 0600)
	if err != nil {
		return fmt.Errorf("open partial file: %w", err)
	}

	total := record.Size
	if total == 0 && resp.ContentLength > 0 {
		total = offset + resp.ContentLength
	}

	written, err := io.Copy(out, r.progressBody(ctx, resp.Body, record.BlockID, offset, total))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write download (%d bytes): %w", written, err)
	}

	if err := os.Rename(partPath, record.Path); err != nil {
		return fmt.Errorf("finalise download: %w", err)
	}
	return nil
}

// progressBody wraps a response body so reads emit throttled progress.
func (r *Runner) progressBody(ctx context.Context, body io.Reader, blockID string, offset, total int64) io.Reader {
	return &progressReader{
		ctx:     ctx,
		inner:   body,
		runner:  r,
		blockID: blockID,
		written: offset,
		total:   total,
	}
}

// emit fans a status out to subscribers without blocking on slow ones.
func (r *Runner) emit(status domain.DownloadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		select {
		case ch <- status:
		default:
			logger.Warn("downloads: subscriber %d is slow, dropping status", id)
		}
	}
}

// progressReader counts bytes and reports progress at most once per
// interval. It also honours context cancellation between reads, which
// the bare response body would only notice on the next network read.
type progressReader struct {
	ctx      context.Context
	inner    io.Reader
	runner   *Runner
	blockID  string
	written  int64
	total    int64
	lastEmit time.Time
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.inner.Read(buf)
	p.written += int64(n)

	if p.total > 0 && time.Since(p.lastEmit) >= progressInterval {
		p.lastEmit = time.Now()
		p.runner.emit(domain.DownloadStatus{
			BlockID:  p.blockID,
			State:    domain.DownloadStateDownloading,
			Progress: float64(p.written) / float64(p.total),
		})
	}
	return n, err
}

// targetPath derives the on-disk location for a record. The block id is
// globally unique, so it keys the filename; the URL's extension is kept
// for players that sniff by suffix.
func targetPath(record domain.DownloadRecord) string {
	if record.Path != "" && filepath.Ext(record.Path) != "" {
		return record.Path
	}
	folder := record.Path
	if folder == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			folder = filepath.Join(home, ".stride", "downloads")
		} else {
			folder = "downloads"
		}
	}

	name := sanitise(record.BlockID)
	if ext := filepath.Ext(record.URL); ext != "" && len(ext) <= 5 {
		name += ext
	}
	return filepath.Join(folder, name)
}

// sanitise strips path-hostile characters from an id.
func sanitise(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
