package pipeline

import (
	"context"

	"railio/internal/application/dump"
	"railio/internal/railml"
)

// RoundTrip is the outcome of importing, writing and re-importing a file
type RoundTrip struct {
	First  *Import
	Second *Import
	Output []byte
	// Differences lists the dump lines that changed, empty when the round trip is lossless
	Differences []string
}

// Lossless reports whether the re-imported model equals the original
func (r *RoundTrip) Lossless() bool {
	return len(r.Differences) == 0
}

// RoundTrip imports data, writes it as version and imports the output again,
// comparing both models through their dumps
func (p *Pipeline) RoundTrip(ctx context.Context, source string, data []byte, version railml.Version) (*RoundTrip, error) {
	first, err := p.Import(ctx, source, data)
	if err != nil {
		return nil, err
	}
	out, err := p.Export(ctx, first.Model, version)
	if err != nil {
		return nil, err
	}
	second, err := p.Import(ctx, source, out)
	if err != nil {
		return nil, err
	}

	a, err := comparable(first)
	if err != nil {
		return nil, err
	}
	b, err := comparable(second)
	if err != nil {
		return nil, err
	}

	rt := &RoundTrip{First: first, Second: second, Output: out, Differences: dump.Diff(a, b)}
	p.logger.Info("round trip complete",
		"source", source,
		"from", first.Report.Version,
		"to", version.String(),
		"differences", len(rt.Differences))
	return rt, nil
}

// comparable dumps an import without its version, which legitimately changes
func comparable(imp *Import) ([]byte, error) {
	m := *imp.Model
	m.Version = ""
	return dump.Encode(&m)
}
