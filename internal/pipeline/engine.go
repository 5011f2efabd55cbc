package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"titledoctor/internal/bus"
	"titledoctor/internal/events"
	"titledoctor/internal/jobs"
	"titledoctor/internal/logging"
	"titledoctor/internal/services"
	"titledoctor/internal/stage"
)

// Engine binds stage handlers to the event router and runs the uniform stage
// protocol around each one: load the job record, move it into the stage's
// processing status, execute, then persist the outcome and publish exactly
// one follow-on event (success or failure) or none at all.
type Engine struct {
	store  *jobs.Store
	router *bus.Router
	logger *slog.Logger

	mu       sync.Mutex
	handlers []stage.Handler
	baseCtx  context.Context
}

// New constructs an engine over the given store and router.
func New(store *jobs.Store, router *bus.Router, logger *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		router:  router,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		baseCtx: context.Background(),
	}
}

// Register adds a stage handler. Call before Start.
func (e *Engine) Register(handlers ...stage.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handlers...)
}

// Start subscribes every registered handler to its trigger topic. Stage work
// runs on ctx rather than the publisher's context, so an HTTP request
// finishing never cancels the pipeline it started.
func (e *Engine) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.mu.Lock()
	e.baseCtx = ctx
	handlers := make([]stage.Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		h := handler
		e.router.Subscribe(h.Trigger(), func(_ context.Context, event bus.Event) {
			e.runStage(e.baseCtx, h, event)
		})
	}
}

// Health reports readiness for every registered stage.
func (e *Engine) Health(ctx context.Context) []stage.Health {
	e.mu.Lock()
	handlers := make([]stage.Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	results := make([]stage.Health, 0, len(handlers))
	for _, handler := range handlers {
		results = append(results, handler.HealthCheck(ctx))
	}
	return results
}

func (e *Engine) runStage(ctx context.Context, handler stage.Handler, event bus.Event) {
	scoped, ok := event.(events.JobScoped)
	if !ok {
		e.logger.Error("event missing job reference",
			logging.String(logging.FieldStage, handler.Name()),
			logging.String(logging.FieldTopic, string(event.EventTopic())))
		return
	}
	ref := scoped.Job()
	if ref.JobID == "" || ref.Email == "" {
		e.logger.Error("cannot run stage without job id and email",
			logging.String(logging.FieldStage, handler.Name()))
		return
	}

	ctx = services.WithJobID(ctx, ref.JobID)
	ctx = services.WithStage(ctx, handler.Name())
	logger := logging.WithContext(ctx, e.logger)

	record, err := e.store.Get(ctx, ref.JobID)
	if err != nil {
		logger.Error("load job record", logging.Error(err))
		return
	}
	if record == nil {
		logger.Error("job not found")
		return
	}

	if !record.Transition(handler.ProcessingStatus()) {
		logger.Warn("stage skipped, transition refused",
			logging.String("current_status", string(record.Status)),
			logging.String("target_status", string(handler.ProcessingStatus())))
		return
	}
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist processing status", logging.Error(err))
		return
	}

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_started"))

	next, execErr := handler.Execute(ctx, record, event)
	if execErr != nil {
		e.failJob(ctx, logger, handler, record, ref, execErr)
		return
	}

	if !record.Transition(handler.DoneStatus()) {
		logger.Error("done transition refused",
			logging.String("current_status", string(record.Status)),
			logging.String("target_status", string(handler.DoneStatus())))
		return
	}
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist done status", logging.Error(err))
		return
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_completed"),
		logging.String("status", string(record.Status)))

	if next != nil {
		if err := e.router.Publish(ctx, next); err != nil {
			logger.Error("publish stage event", logging.Error(err))
		}
	}
}

func (e *Engine) failJob(ctx context.Context, logger *slog.Logger, handler stage.Handler, record *jobs.Record, ref events.JobRef, execErr error) {
	message := services.Message(execErr)
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String(logging.FieldErrorKind, services.Kind(execErr)),
		logging.Error(execErr))

	record.SetFailed(message)
	if err := e.store.Update(ctx, record); err != nil {
		logger.Error("persist failed status", logging.Error(err))
	}

	failure := events.NewJobFailed(handler.ErrorTopic(), ref, handler.Name(), message)
	if err := e.router.Publish(ctx, failure); err != nil {
		logger.Error("publish failure event", logging.Error(err))
	}
}
