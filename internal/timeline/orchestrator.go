package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"timemirror/internal/infra"
	"timemirror/internal/prompt"
	"timemirror/internal/providers/image"
	"timemirror/internal/storage"
	"timemirror/internal/stream"
)

const defaultGenerateTimeout = 120 * time.Second

// Orchestrator owns the whole application state (upload, factors, cards,
// in-flight flag) and drives the per-year generation fan-out: one concurrent
// provider call per target year, each settling its own card independently.
type Orchestrator struct {
	logger  infra.Logger
	gen     image.Generator
	store   *storage.MemStore
	hub     *stream.Hub
	timeout time.Duration

	mu         sync.Mutex
	upload     *Upload
	factors    prompt.Factors
	cards      map[int]*ResultCard
	runID      string
	inProgress bool
}

// Options configures an Orchestrator.
type Options struct {
	Generator image.Generator
	Store     *storage.MemStore
	Hub       *stream.Hub
	Logger    infra.Logger
	// Timeout bounds each year's provider call. There is no cancellation
	// beyond it: a dispatched run always settles all five years.
	Timeout time.Duration
}

// NewOrchestrator builds an orchestrator with all five cards pending and the
// default slider values.
func NewOrchestrator(opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	o := &Orchestrator{
		logger:  opts.Logger,
		gen:     opts.Generator,
		store:   opts.Store,
		hub:     opts.Hub,
		timeout: timeout,
		factors: prompt.DefaultFactors(),
		cards:   make(map[int]*ResultCard, len(Years)),
	}
	for _, year := range Years {
		o.cards[year] = &ResultCard{Year: year, Status: StatusPending}
	}
	return o
}

// SetUpload stores a new portrait and releases the previous preview blob,
// exactly once and only after the new one is readable.
func (o *Orchestrator) SetUpload(filename, mime string, data []byte) (Upload, error) {
	key, err := o.store.Write("upload/"+uuid.NewString(), data, mime)
	if err != nil {
		return Upload{}, fmt.Errorf("store upload: %w", err)
	}
	up := Upload{BaseName: baseName(filename), MIME: mime, PreviewKey: key}

	o.mu.Lock()
	previous := o.upload
	o.upload = &up
	o.mu.Unlock()

	if previous != nil {
		o.store.Remove(previous.PreviewKey)
	}
	o.logger.Info().
		Str("base_name", up.BaseName).
		Str("mime", mime).
		Int("bytes", len(data)).
		Msg("timeline: portrait uploaded")
	return up, nil
}

// SetFactors replaces the lifestyle sliders, clamped to the 0-10 range.
func (o *Orchestrator) SetFactors(f prompt.Factors) {
	o.mu.Lock()
	o.factors = f.Clamp()
	o.mu.Unlock()
}

// Factors returns the current slider values.
func (o *Orchestrator) Factors() prompt.Factors {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.factors
}

// Snapshot copies the observable state for the presentation layer.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() State {
	st := State{
		InProgress: o.inProgress,
		RunID:      o.runID,
		Smoking:    o.factors.Smoking,
		SunExp:     o.factors.SunExposure,
		Stress:     o.factors.Stress,
		Cards:      make([]ResultCard, 0, len(Years)),
	}
	if o.upload != nil {
		st.HasUpload = true
		st.BaseName = o.upload.BaseName
		st.PreviewKey = o.upload.PreviewKey
	}
	for _, year := range Years {
		st.Cards = append(st.Cards, *o.cards[year])
	}
	return st
}

// Trigger starts a generation run: validates the upload, resets all five
// cards to pending and dispatches one concurrent provider call per year.
// It returns as soon as the run is dispatched; settlements stream through
// the hub as they arrive.
func (o *Orchestrator) Trigger(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	o.mu.Lock()
	if o.inProgress {
		o.mu.Unlock()
		return "", ErrRunInFlight
	}
	if o.upload == nil {
		o.mu.Unlock()
		return "", ErrNoUpload
	}
	source, ok := o.store.Read(o.upload.PreviewKey)
	if !ok {
		o.mu.Unlock()
		return "", ErrNoUpload
	}
	if o.runID != "" {
		o.store.RemovePrefix("render/" + o.runID)
	}

	runID := uuid.NewString()
	o.runID = runID
	o.inProgress = true
	factors := o.factors
	mime := o.upload.MIME
	for _, year := range Years {
		*o.cards[year] = ResultCard{Year: year, Status: StatusPending}
	}
	o.hub.Publish(stream.Event{Type: stream.TypeRunStarted, RunID: runID})
	for _, year := range Years {
		o.hub.Publish(stream.Event{Type: stream.TypeCardUpdated, RunID: runID, Year: year, Status: string(StatusPending)})
	}
	o.mu.Unlock()

	o.logger.Info().
		Str("run_id", runID).
		Int("smoking", factors.Smoking).
		Int("sun_exposure", factors.SunExposure).
		Int("stress", factors.Stress).
		Msg("timeline: generation run dispatched")

	var wg sync.WaitGroup
	for _, year := range Years {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			o.runYear(runID, year, factors, source.Data, mime)
		}(year)
	}
	go func() {
		wg.Wait()
		o.finishRun(runID)
	}()

	return runID, nil
}

// runYear performs one year's attempt. Any failure, including a panic in the
// provider, settles only this year's card and never propagates to siblings.
func (o *Orchestrator) runYear(runID string, year int, f prompt.Factors, source []byte, mime string) {
	defer func() {
		if r := recover(); r != nil {
			o.settle(runID, year, nil, "", fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	instruction := prompt.Build(year, f)
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	render, err := o.gen.EditPortrait(ctx, image.Request{
		Prompt:    instruction,
		Image:     source,
		MIME:      mime,
		RequestID: runID,
		Year:      year,
	})
	switch {
	case err != nil:
		o.settle(runID, year, nil, "", err)
	case render == nil || len(render.Data) == 0:
		o.settle(runID, year, nil, "", fmt.Errorf("model returned no image"))
	default:
		o.settle(runID, year, render.Data, render.MIME, nil)
	}
}

// settle applies one year's outcome. Settlements carrying a stale run id are
// dropped so a superseded run can never touch the current cards. The hub
// publish happens under the state lock, keeping event order identical to
// settlement order.
func (o *Orchestrator) settle(runID string, year int, data []byte, mime string, cause error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if runID != o.runID {
		o.logger.Debug().Str("run_id", runID).Int("year", year).Msg("timeline: dropped stale settlement")
		return
	}
	card := o.cards[year]

	if cause == nil {
		key, err := o.store.Write(fmt.Sprintf("render/%s/%d", runID, year), data, mime)
		if err != nil {
			cause = fmt.Errorf("store render: %w", err)
		} else {
			card.Status = StatusSuccess
			card.MIME = mime
			card.ImageKey = key
			card.Reason = ""
		}
	}
	if cause != nil {
		card.Status = StatusFailed
		card.Reason = cause.Error()
		o.logger.Warn().Err(cause).Str("run_id", runID).Int("year", year).Msg("timeline: year failed")
	} else {
		o.logger.Info().Str("run_id", runID).Int("year", year).Int("bytes", len(data)).Msg("timeline: year settled")
	}

	o.hub.Publish(stream.Event{
		Type:   stream.TypeCardUpdated,
		RunID:  runID,
		Year:   year,
		Status: string(card.Status),
		Reason: card.Reason,
	})
}

// finishRun clears the in-flight flag once all five years have settled.
func (o *Orchestrator) finishRun(runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if runID != o.runID {
		return
	}
	o.inProgress = false

	succeeded, failed := 0, 0
	for _, card := range o.cards {
		switch card.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		}
	}
	o.logger.Info().
		Str("run_id", runID).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("timeline: generation run finished")
	o.hub.Publish(stream.Event{Type: stream.TypeRunFinished, RunID: runID})
}

// Render returns a successful year's image bytes, media type and download
// filename (<base>_<year>.png).
func (o *Orchestrator) Render(year int) ([]byte, string, string, error) {
	o.mu.Lock()
	card, ok := o.cards[year]
	if !ok {
		o.mu.Unlock()
		return nil, "", "", ErrUnknownYear
	}
	if card.Status != StatusSuccess || card.ImageKey == "" {
		o.mu.Unlock()
		return nil, "", "", ErrRenderNotReady
	}
	key := card.ImageKey
	mime := card.MIME
	base := "portrait"
	if o.upload != nil {
		base = o.upload.BaseName
	}
	o.mu.Unlock()

	blob, ok := o.store.Read(key)
	if !ok {
		return nil, "", "", ErrRenderNotReady
	}
	if mime == "" {
		mime = blob.MIME
	}
	return blob.Data, mime, fmt.Sprintf("%s_%d.png", base, year), nil
}

// Renders returns every successful year's image with its download filename,
// in year order.
func (o *Orchestrator) Renders() []NamedRender {
	var out []NamedRender
	for _, year := range Years {
		data, mime, name, err := o.Render(year)
		if err != nil {
			continue
		}
		out = append(out, NamedRender{Year: year, Filename: name, MIME: mime, Data: data})
	}
	return out
}

// NamedRender pairs a successful render with its download filename.
type NamedRender struct {
	Year     int
	Filename string
	MIME     string
	Data     []byte
}
