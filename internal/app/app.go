package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"InboxScheduler/internal/classify"
	"InboxScheduler/internal/config"
	"InboxScheduler/internal/infrastructure/auditlog"
	"InboxScheduler/internal/infrastructure/calendarsink"
	"InboxScheduler/internal/infrastructure/gmailsource"
	"InboxScheduler/internal/infrastructure/llm"
	"InboxScheduler/internal/infrastructure/statefile"
	"InboxScheduler/internal/logging"
	"InboxScheduler/internal/schedule"
	"InboxScheduler/internal/temporal"
	"InboxScheduler/internal/textproc"
	"InboxScheduler/internal/usecase"
)

// Application wires configuration to the pipeline and drives one batch run.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source, err := gmailsource.NewSource(ctx, cfg.Gmail, baseLogger.With("component", "gmail"))
	if err != nil {
		return nil, fmt.Errorf("gmail source: %w", err)
	}

	sink, err := calendarsink.NewSink(ctx, cfg.Gmail, cfg.Calendar, baseLogger.With("component", "calendar"))
	if err != nil {
		return nil, fmt.Errorf("calendar sink: %w", err)
	}

	audit := auditlog.NewLog(cfg.State.AuditPath)
	chain := buildChain(cfg, audit, baseLogger)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Sink:       sink,
		States:     statefile.NewStore(cfg.State.StatePath),
		Audit:      audit,
		Chain:      chain,
		Normalizer: textproc.NewNormalizer(),
		Titles: textproc.NewDeriver(
			cfg.Vocab.ActionTerms,
			cfg.Vocab.TitleBoilerplate,
			cfg.Title.ScanLines,
			cfg.Title.MinLen,
			cfg.Title.MaxLen,
			cfg.Title.Fallback,
		),
		Temporal: temporal.NewExtractor(
			cfg.Temporal.ProximityWindow,
			cfg.Temporal.RequireContext,
			cfg.Vocab.ScheduleContext,
		),
		Builder: schedule.NewBuilder(cfg.Run.Location(), cfg.Run.Timezone),
		Logger:  baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline}, nil
}

// Run executes one batch with the given options.
func (a *Application) Run(ctx context.Context, opts usecase.Options) (usecase.Summary, error) {
	return a.pipeline.Run(ctx, opts)
}

// buildChain composes hard-exclude and actionability gating ahead of exactly
// one terminal strategy: the trained Bayes classifier when the mode and audit
// history allow it, otherwise the semantic judge (when configured) backed by
// the keyword heuristic.
func buildChain(cfg config.Config, audit *auditlog.Log, logger *slog.Logger) *classify.Chain {
	strategies := []classify.Strategy{
		classify.NewHardExclude(cfg.Vocab.HardExcludePhrases, cfg.Vocab.HardExcludeSenders, cfg.Classifier.CheckSender),
		classify.NewActionableGate(cfg.Vocab.ActionTerms, cfg.Vocab.CompletionPhrases),
	}

	if cfg.Classifier.Mode != "heuristic" {
		if bayes := trainBayes(cfg, audit, logger); bayes != nil {
			strategies = append(strategies, bayes)
			return classify.NewChain(logger.With("component", "classifier"), strategies...)
		}
	}

	if cfg.Judge.APIKey != "" {
		strategies = append(strategies, llm.NewJudge(cfg.Judge, logger.With("component", "judge")))
	}
	strategies = append(strategies, classify.NewKeywordHeuristic(cfg.Vocab.StrongTerms, cfg.Vocab.NoiseTerms))

	return classify.NewChain(logger.With("component", "classifier"), strategies...)
}

func trainBayes(cfg config.Config, audit *auditlog.Log, logger *slog.Logger) *classify.Bayes {
	examples, err := audit.TrainingExamples()
	if err != nil {
		logger.Warn("cannot read audit history for training", "error", err)
		return nil
	}

	bayes, err := classify.TrainBayes(examples, cfg.Classifier.TrainedMinClass, cfg.Classifier.TrainedAccept)
	if err != nil {
		if errors.Is(err, classify.ErrInsufficientData) {
			logger.Info("trained classifier disabled", "examples", len(examples))
		} else {
			logger.Warn("training failed", "error", err)
		}
		return nil
	}

	logger.Info("trained classifier active", "examples", len(examples))
	return bayes
}
