// Package pipeline chains the import stages: parse, model building,
// topology, mileage and object mapping, plus the layout and export stages
// that run on the resulting model.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"railio/internal/application"
	"railio/internal/application/export"
	"railio/internal/application/mapper"
	"railio/internal/application/mileage"
	"railio/internal/application/schematic"
	"railio/internal/application/topology"
	"railio/internal/domain"
	"railio/internal/railml"
)

const tracerName = "railio/pipeline"

// Stage names used in spans, logs and StageError
const (
	StageParse    = "parse"
	StageModel    = "model"
	StageTopology = "topology"
	StageMileage  = "mileage"
	StageObjects  = "objects"
	StageLayout   = "layout"
	StageExport   = "export"
)

// Pipeline runs the stages with one mileage policy and logger
type Pipeline struct {
	policy mileage.Policy
	logger *slog.Logger
}

type Option func(*Pipeline)

// WithPolicy sets the mileage policy, FromFile with missing fallback by default
func WithPolicy(p mileage.Policy) Option {
	return func(pl *Pipeline) {
		pl.policy = p
	}
}

// WithLogger sets the logger stage progress is reported to
func WithLogger(l *slog.Logger) Option {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		policy: mileage.DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the mileage policy in use
func (p *Pipeline) Policy() mileage.Policy {
	return p.policy
}

// Import is the outcome of a successful import
type Import struct {
	Document *railml.Document
	Model    *domain.RailwayModel
	Report   Report
}

// Import parses data and resolves it into a model with topology, mileage and objects
func (p *Pipeline) Import(ctx context.Context, source string, data []byte) (*Import, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "railio.import")
	defer span.End()
	span.SetAttributes(
		attribute.String("railio.source", source),
		attribute.Int("railio.bytes", len(data)),
		attribute.String("railio.mileage_policy", p.policy.String()),
	)

	res := &Import{Report: Report{Source: source, Policy: p.policy.String()}}
	log := p.logger.With("source", source)

	err := p.stage(ctx, log, StageParse, source, func() error {
		doc, err := railml.Parse(data)
		if err != nil {
			return err
		}
		res.Document = doc
		res.Report.Version = doc.Version.String()
		res.Report.Diagnostics = doc.Diagnostics
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	err = p.stage(ctx, log, StageModel, source, func() error {
		res.Model = mapper.BuildModel(res.Document, source)
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	err = p.stage(ctx, log, StageTopology, source, func() error {
		graph, warnings, err := topology.Resolve(res.Model.Tracks)
		res.Report.Warnings.Add(warnings...)
		if err != nil {
			return err
		}
		res.Model.Graph = graph
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	err = p.stage(ctx, log, StageMileage, source, func() error {
		assignment, warnings, err := mileage.Resolve(res.Model, res.Model.Graph, p.policy)
		res.Report.Warnings.Add(warnings...)
		if err != nil {
			return err
		}
		res.Model.Mileage = assignment
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	err = p.stage(ctx, log, StageObjects, source, func() error {
		objects, warnings := mapper.Map(mapper.Tracks(res.Document), res.Model.Mileage)
		res.Report.Warnings.Add(warnings...)
		res.Model.Objects = objects
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	res.Report.count(res.Model)
	span.SetAttributes(
		attribute.Int("railio.tracks", len(res.Model.Tracks)),
		attribute.Int("railio.objects", len(res.Model.Objects)),
		attribute.Int("railio.warnings", len(res.Report.Warnings)),
	)
	log.Info("import complete",
		"version", res.Report.Version,
		"tracks", len(res.Model.Tracks),
		"nodes", len(res.Model.Graph.Nodes),
		"objects", len(res.Model.Objects),
		"warnings", len(res.Report.Warnings),
		"diagnostics", len(res.Report.Diagnostics))
	return res, nil
}

// Layout solves the schematic of an imported model
func (p *Pipeline) Layout(ctx context.Context, res *Import, opts schematic.Options) (*domain.Layout, error) {
	if res == nil || res.Model == nil {
		return nil, fmt.Errorf("%w: layout needs an imported model", application.ErrInvalidOperation)
	}
	var layout *domain.Layout
	err := p.stage(ctx, p.logger.With("source", res.Report.Source), StageLayout, res.Report.Source, func() error {
		var warnings []application.Warning
		layout, warnings = schematic.Solve(res.Model.Graph, res.Model.Mileage, res.Model.Objects, opts)
		res.Report.Warnings.Add(warnings...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

// Export writes model as railML of the given version
func (p *Pipeline) Export(ctx context.Context, model *domain.RailwayModel, version railml.Version) ([]byte, error) {
	var out []byte
	source := ""
	if model != nil {
		source = model.Source
	}
	err := p.stage(ctx, p.logger.With("source", source), StageExport, source, func() error {
		doc, err := export.Document(model, version)
		if err != nil {
			return err
		}
		out, err = railml.Marshal(doc, version)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stage runs fn inside a span, stopping early when ctx is done
func (p *Pipeline) stage(ctx context.Context, log *slog.Logger, name, source string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &application.StageError{Stage: name, Source: source, Err: err}
	}
	_, span := otel.Tracer(tracerName).Start(ctx, "railio."+name)
	defer span.End()

	log.Debug("stage started", "stage", name)
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("stage failed", "stage", name, "error", err)
		return &application.StageError{Stage: name, Source: source, Err: err}
	}
	log.Debug("stage finished", "stage", name)
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
