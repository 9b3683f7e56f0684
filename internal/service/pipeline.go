package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storyapi/internal/asset"
	"storyapi/internal/logging"
	"storyapi/internal/metrics"
	"storyapi/internal/model"
	"storyapi/internal/storage"
)

var tracer = otel.Tracer("storyapi/internal/service")

var (
	// ErrAssetWrite aborts a publish before anything is persisted.
	ErrAssetWrite = errors.New("asset write failed")
	// ErrPersist wraps an error returned by the record persister.
	ErrPersist = errors.New("persist failed")
	// ErrNotPersisted means the persister reported neither a new id nor an affected row.
	ErrNotPersisted = errors.New("record was not persisted")
)

// Source is where the asset of a publish comes from.
type Source int

const (
	SourceNone Source = iota
	SourceUpload
	SourceGallery
)

func (s Source) String() string {
	switch s {
	case SourceUpload:
		return "upload"
	case SourceGallery:
		return "gallery"
	default:
		return "none"
	}
}

// Upload is a raw file sent with the request.
type Upload struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

func (u *Upload) empty() bool {
	return u == nil || u.Reader == nil || u.Size == 0
}

// Job describes one publish. AssetURL points at the DTO field that receives the
// public URL of the written asset; Persist writes the record and is told whether
// that field carries a new value.
type Job struct {
	ActorID  string
	OwnerID  string
	Category model.Category
	Upload   *Upload
	AssetURL *string
	Persist  func(ctx context.Context, assetChanged bool) (model.PersistResult, error)
	// Notice is the text appended to each follower's name; empty disables notification.
	Notice string
}

// Outcome reports what a successful publish did.
type Outcome struct {
	Result model.PersistResult
	Source Source
	Asset  model.AssetReference
}

// FollowerNotifier is the notification step of the pipeline.
type FollowerNotifier interface {
	NotifyFollowers(ctx context.Context, actorID, suffix string) error
}

// PipelineOptions tunes a Pipeline.
type PipelineOptions struct {
	Logger  *zap.Logger
	Metrics *metrics.Pipeline
	// NotifyTimeout bounds a detached notification pass. Defaults to 30s.
	NotifyTimeout time.Duration
}

// Pipeline writes an asset, persists its record and notifies followers.
// One Pipeline serves all requests; each Publish call is independent.
type Pipeline struct {
	resolver      *asset.Resolver
	store         storage.AssetStore
	notifier      FollowerNotifier
	log           *zap.Logger
	metrics       *metrics.Pipeline
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

// NewPipeline wires a Pipeline. notifier may be nil, which disables notification.
func NewPipeline(resolver *asset.Resolver, store storage.AssetStore, notifier FollowerNotifier, opts PipelineOptions) *Pipeline {
	p := &Pipeline{
		resolver:      resolver,
		store:         store,
		notifier:      notifier,
		log:           logging.OrNop(opts.Logger).Named("pipeline"),
		metrics:       opts.Metrics,
		notifyTimeout: opts.NotifyTimeout,
	}
	if p.notifyTimeout <= 0 {
		p.notifyTimeout = 30 * time.Second
	}
	return p
}

// Publish runs the pipeline for job. The returned error wraps ErrAssetWrite,
// ErrPersist or ErrNotPersisted. Notification never affects the result.
func (p *Pipeline) Publish(ctx context.Context, job Job) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Publish")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", job.Category.String()),
		attribute.String("owner_id", job.OwnerID),
	)

	if job.Persist == nil {
		return Outcome{}, errors.New("publish job has no persister")
	}
	if job.AssetURL == nil {
		job.AssetURL = new(string)
	}

	src := p.selectSource(job)
	span.SetAttributes(attribute.String("source", src.String()))

	ref, src, err := p.write(ctx, job, src)
	if err != nil {
		p.fail(ctx, span, job, src, "asset_write_failed", err)
		return Outcome{}, err
	}

	if src == SourceNone {
		*job.AssetURL = ""
	} else {
		*job.AssetURL = ref.PublicURL
	}

	res, err := job.Persist(ctx, src != SourceNone)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersist, err)
		p.fail(ctx, span, job, src, "persist_failed", err)
		return Outcome{}, err
	}
	if !res.OK() {
		p.fail(ctx, span, job, src, "not_persisted", ErrNotPersisted)
		return Outcome{}, ErrNotPersisted
	}

	p.metrics.ObservePublish(job.Category.String(), src.String(), "ok")
	p.log.Info("published",
		zap.String("request_id", logging.RequestID(ctx)),
		zap.String("category", job.Category.String()),
		zap.String("source", src.String()),
		zap.String("owner_id", job.OwnerID),
		zap.String("asset_key", ref.Key),
	)

	p.notifyAsync(ctx, job.ActorID, job.Notice)

	return Outcome{Result: res, Source: src, Asset: ref}, nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) selectSource(job Job) Source {
	switch {
	case !job.Upload.empty():
		return SourceUpload
	case p.resolver.IsGalleryURL(*job.AssetURL):
		return SourceGallery
	default:
		return SourceNone
	}
}

// write stores the asset for src. An empty gallery source downgrades to SourceNone.
func (p *Pipeline) write(ctx context.Context, job Job, src Source) (model.AssetReference, Source, error) {
	switch src {
	case SourceUpload:
		dst, err := p.resolver.Resolve(job.Category, job.OwnerID, asset.NewFileName(asset.Ext(job.Upload.Filename)))
		if err != nil {
			return model.AssetReference{}, src, fmt.Errorf("%w: %w", ErrAssetWrite, err)
		}
		if err := p.store.WriteUpload(ctx, job.Upload.Reader, dst); err != nil {
			return model.AssetReference{}, src, fmt.Errorf("%w: %w", ErrAssetWrite, err)
		}
		return dst, src, nil

	case SourceGallery:
		from, err := p.resolver.Locate(*job.AssetURL)
		if err != nil {
			return model.AssetReference{}, src, fmt.Errorf("%w: %w", ErrAssetWrite, err)
		}
		dst, err := p.resolver.Resolve(job.Category, job.OwnerID, asset.NewFileName(asset.Ext(from.Key)))
		if err != nil {
			return model.AssetReference{}, src, fmt.Errorf("%w: %w", ErrAssetWrite, err)
		}
		copied, err := p.store.Duplicate(ctx, from, dst)
		if err != nil {
			return model.AssetReference{}, src, fmt.Errorf("%w: %w", ErrAssetWrite, err)
		}
		if !copied {
			p.log.Info("gallery_source_empty", zap.String("source_key", from.Key))
			return model.AssetReference{}, SourceNone, nil
		}
		return dst, src, nil
	}
	return model.AssetReference{}, SourceNone, nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, job Job, src Source, result string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	p.metrics.ObservePublish(job.Category.String(), src.String(), result)
	p.log.Warn("publish_failed",
		zap.String("request_id", logging.RequestID(ctx)),
		zap.String("category", job.Category.String()),
		zap.String("source", src.String()),
		zap.String("owner_id", job.OwnerID),
		zap.String("result", result),
		zap.Error(err),
	)
}

// notifyAsync dispatches on a detached goroutine. The request context's values
// are kept but its cancellation is not, so the pass outlives the response.
func (p *Pipeline) notifyAsync(ctx context.Context, actorID, notice string) {
	if p.notifier == nil || notice == "" {
		return
	}
	// Callers may hand in strings backed by reused request buffers.
	actorID, notice = strings.Clone(actorID), strings.Clone(notice)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("notification_panic",
					zap.String("request_id", logging.RequestID(ctx)),
					zap.String("actor_id", actorID),
					zap.Any("panic", r),
				)
			}
		}()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.notifyTimeout)
		defer cancel()
		if err := p.notifier.NotifyFollowers(nctx, actorID, notice); err != nil {
			p.log.Warn("notification_failed",
				zap.String("request_id", logging.RequestID(ctx)),
				zap.String("actor_id", actorID),
				zap.Error(err),
			)
		}
	}()
}
