// Package pipeline composes the question-to-answer flow as an explicit
// finite state machine: cache check, memory load, intent classification,
// generation, validation, execution, post-processing, feedback.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/adapters/datasource"
	"github.com/aiquery-dev/aiquery-engine/pkg/apperrors"
	"github.com/aiquery-dev/aiquery-engine/pkg/cache"
	"github.com/aiquery-dev/aiquery-engine/pkg/logging"
	"github.com/aiquery-dev/aiquery-engine/pkg/memory"
	"github.com/aiquery-dev/aiquery-engine/pkg/models"
	sqlval "github.com/aiquery-dev/aiquery-engine/pkg/sql"
)

// DefaultExecutionTimeout bounds one execution call.
const DefaultExecutionTimeout = 30 * time.Second

// Classifier labels a question with an intent. Implementations are total:
// they always produce an Intent.
type Classifier interface {
	Classify(ctx context.Context, question, conversationContext string) models.Intent
}

// Generator produces a candidate query. Retry and backend fallback live
// behind this call; the orchestrator treats it as a single fallible step.
type Generator interface {
	Generate(ctx context.Context, question, conversationContext string, intent models.Intent) (models.CandidateQuery, error)
}

// Limiter admits or rejects a user before any work starts.
type Limiter interface {
	Check(userID string) bool
	Consume(userID string)
}

// FeedbackRecorder captures the outcome of an answered question.
type FeedbackRecorder interface {
	Record(question, sql, userID string, wasExecuted, executionSuccess bool) models.FeedbackRecord
}

// Auditor receives the security-relevant rejections: validator blocks and
// rate-limit denials.
type Auditor interface {
	LogBlockedQuery(userID, sessionID, sql string, errors []string)
	LogRateLimited(userID, clientIP string)
}

// requestContext is the state accumulated across one run.
type requestContext struct {
	question    models.Question
	memoryCtx   string
	intent      models.Intent
	candidate   models.CandidateQuery
	outcome     models.ValidationOutcome
	result      *models.ExecutionResult
	errMsg      string
	err         error
	cachedHit   *cache.Hit
	fromCache   bool
}

// Orchestrator runs the state machine. All collaborators are injected so
// tests can substitute fakes and independent instances never share state.
type Orchestrator struct {
	cache       cache.ResultCache
	limiter     Limiter
	memory      *memory.Store
	classifier  Classifier
	generator   Generator
	connector   datasource.Connector
	feedback    FeedbackRecorder
	auditor     Auditor
	execTimeout time.Duration
	logger      *zap.Logger
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithExecutionTimeout overrides the per-request execution timeout.
func WithExecutionTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.execTimeout = d }
}

// WithLimiter sets the admission rate limiter.
func WithLimiter(l Limiter) Option {
	return func(o *Orchestrator) { o.limiter = l }
}

// WithFeedback sets the feedback recorder.
func WithFeedback(f FeedbackRecorder) Option {
	return func(o *Orchestrator) { o.feedback = f }
}

// WithAuditor sets the security audit sink.
func WithAuditor(a Auditor) Option {
	return func(o *Orchestrator) { o.auditor = a }
}

// NewOrchestrator wires the pipeline. Cache, memory, classifier, generator,
// and connector are required; limiter and feedback are optional.
func NewOrchestrator(
	resultCache cache.ResultCache,
	store *memory.Store,
	classifier Classifier,
	generator Generator,
	connector datasource.Connector,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		cache:       resultCache,
		memory:      store,
		classifier:  classifier,
		generator:   generator,
		connector:   connector,
		execTimeout: DefaultExecutionTimeout,
		logger:      logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process answers one question. Admission control runs before the state
// machine; a denied request consumes no generation or execution budget.
func (o *Orchestrator) Process(ctx context.Context, question models.Question) models.QueryResponse {
	if o.limiter != nil {
		if !o.limiter.Check(question.UserID) {
			o.logger.Warn("request rejected by rate limiter",
				zap.String("user_id", question.UserID),
				zap.Error(apperrors.ErrRateLimited))
			if o.auditor != nil {
				o.auditor.LogRateLimited(question.UserID, question.ClientIP)
			}
			return models.QueryResponse{
				Success:  false,
				Question: question.Text,
				Error:    "Rate limit exceeded. Please try again later.",
				Warnings: []string{},
			}
		}
		o.limiter.Consume(question.UserID)
	}

	rc := &requestContext{question: question}
	state := StateCheckCache

	for state != StateDone {
		next := o.step(ctx, state, rc)
		o.logger.Debug("state transition",
			zap.String("from", state.String()),
			zap.String("to", next.String()))
		state = next
	}

	return o.buildResponse(rc)
}

// step is the transition function: one state in, the next state out, with
// the request context accumulating along the way.
func (o *Orchestrator) step(ctx context.Context, state State, rc *requestContext) State {
	switch state {
	case StateCheckCache:
		return o.checkCache(rc)
	case StateLoadMemory:
		return o.loadMemory(rc)
	case StateClassifyIntent:
		return o.classifyIntent(ctx, rc)
	case StateGenerate:
		return o.generate(ctx, rc)
	case StateValidate:
		return o.validate(rc)
	case StateExecute:
		return o.execute(ctx, rc)
	case StatePostProcess:
		return o.postProcess(rc)
	case StateRecordFeedback:
		return o.recordFeedback(rc)
	case StateError:
		o.reportFailure(rc)
		return StateDone
	default:
		return StateDone
	}
}

// reportFailure runs once per failed request, after the failing stage has
// classified its error. Validator rejections additionally go to the
// security audit sink.
func (o *Orchestrator) reportFailure(rc *requestContext) {
	if o.auditor != nil && errors.Is(rc.err, apperrors.ErrValidationFailed) {
		o.auditor.LogBlockedQuery(rc.question.UserID, rc.question.SessionID, rc.candidate.SQL, rc.outcome.Errors)
	}
	o.logger.Warn("request failed",
		zap.String("user_id", rc.question.UserID),
		zap.String("error", logging.SanitizeError(rc.err)))
}

func (o *Orchestrator) checkCache(rc *requestContext) State {
	hit, err := o.cache.Get(rc.question.Text)
	if err != nil {
		// Cache failures are best-effort: log and treat as a miss.
		o.logger.Warn("cache lookup failed", zap.String("error", logging.SanitizeError(err)))
		return StateLoadMemory
	}
	if hit == nil {
		return StateLoadMemory
	}

	rc.cachedHit = hit
	rc.fromCache = true
	o.logger.Info("cache hit",
		zap.String("user_id", rc.question.UserID),
		zap.String("key", cache.Key(rc.question.Text)))
	return StateDone
}

func (o *Orchestrator) loadMemory(rc *requestContext) State {
	rc.memoryCtx = o.memory.RenderContext(rc.question.UserID, rc.question.SessionID)
	return StateClassifyIntent
}

func (o *Orchestrator) classifyIntent(ctx context.Context, rc *requestContext) State {
	rc.intent = o.classifier.Classify(ctx, rc.question.Text, rc.memoryCtx)
	o.logger.Debug("classified intent",
		zap.String("category", string(rc.intent.Category)),
		zap.Float64("confidence", rc.intent.Confidence))
	return StateGenerate
}

func (o *Orchestrator) generate(ctx context.Context, rc *requestContext) State {
	candidate, err := o.generator.Generate(ctx, rc.question.Text, rc.memoryCtx, rc.intent)
	if err != nil {
		o.logger.Error("generation failed", zap.String("error", logging.SanitizeError(err)))
		rc.err = err // the gateway already wraps apperrors.ErrGenerationFailed
		rc.errMsg = fmt.Sprintf("Query generation failed: %v", err)
		return StateError
	}
	rc.candidate = candidate
	return StateValidate
}

func (o *Orchestrator) validate(rc *requestContext) State {
	rc.outcome = sqlval.Validate(rc.candidate.SQL)
	if !rc.outcome.Valid {
		o.logger.Warn("candidate query rejected",
			zap.Strings("errors", rc.outcome.Errors),
			zap.String("sql", logging.TruncateSQL(rc.candidate.SQL)))
		rc.errMsg = strings.Join(rc.outcome.Errors, "; ")
		rc.err = fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, rc.errMsg)
		return StateError
	}
	return StateExecute
}

func (o *Orchestrator) execute(ctx context.Context, rc *requestContext) State {
	execCtx, cancel := context.WithTimeout(ctx, o.execTimeout)
	defer cancel()

	result, err := o.connector.Execute(execCtx, rc.outcome.SQL)
	if err != nil {
		o.logger.Error("execution failed",
			zap.String("error", logging.SanitizeError(err)),
			zap.String("sql", logging.TruncateSQL(rc.outcome.SQL)))
		rc.err = fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
		rc.errMsg = fmt.Sprintf("Query execution failed: %v", err)
		return StateError
	}
	rc.result = result
	return StatePostProcess
}

// postProcess writes back to cache and memory. Both are best-effort: a
// failure is logged but never turns an answered question into an error.
func (o *Orchestrator) postProcess(rc *requestContext) State {
	if err := o.cache.Set(rc.question.Text, rc.outcome.SQL, rc.result, rc.outcome.Warnings); err != nil {
		o.logger.Warn("cache write failed", zap.String("error", logging.SanitizeError(err)))
	}

	o.memory.AddTurn(rc.question.UserID, rc.question.SessionID, "user", rc.question.Text, nil)
	o.memory.AddTurn(rc.question.UserID, rc.question.SessionID, "assistant", rc.candidate.Explanation, map[string]string{
		memory.MetaSQL:           rc.outcome.SQL,
		memory.MetaResultSummary: fmt.Sprintf("%d rows", rc.result.RowCount),
	})

	return StateRecordFeedback
}

// recordFeedback is fire-and-forget relative to the response: the response
// is already determined before this state runs.
func (o *Orchestrator) recordFeedback(rc *requestContext) State {
	if o.feedback != nil {
		o.feedback.Record(rc.question.Text, rc.outcome.SQL, rc.question.UserID, true, true)
	}
	return StateDone
}

func (o *Orchestrator) buildResponse(rc *requestContext) models.QueryResponse {
	if rc.fromCache {
		warnings := rc.cachedHit.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		return models.QueryResponse{
			Success:  true,
			Question: rc.question.Text,
			SQL:      rc.cachedHit.SQL,
			Data:     rc.cachedHit.Result,
			Warnings: warnings,
			Cached:   true,
		}
	}

	if rc.errMsg != "" {
		return models.QueryResponse{
			Success:     false,
			Question:    rc.question.Text,
			SQL:         rc.candidate.SQL,
			Explanation: rc.candidate.Explanation,
			Error:       rc.errMsg,
			Warnings:    warningsOrEmpty(rc.outcome.Warnings),
		}
	}

	return models.QueryResponse{
		Success:     true,
		Question:    rc.question.Text,
		SQL:         rc.outcome.SQL,
		Explanation: rc.candidate.Explanation,
		Data:        rc.result,
		Warnings:    warningsOrEmpty(rc.outcome.Warnings),
	}
}

func warningsOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
