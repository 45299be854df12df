// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/ngxspec/ngxspec/internal/logging"
)

// Direction selects how operation paths are mapped.
type Direction string

const (
	// DirectionReverse turns upstream paths found in source code into the
	// public paths clients call.
	DirectionReverse Direction = "reverse"
	// DirectionForward turns public paths into upstream paths.
	DirectionForward Direction = "forward"
)

// TagRule tags operations whose mapped path fully matches one of URLs.
// A rule without a name removes the matching operations instead.
type TagRule struct {
	Name string
	URLs []string
}

// MapperOptions configures a Mapper.
type MapperOptions struct {
	Options

	// Direction defaults to DirectionReverse
	Direction Direction

	Tags []TagRule

	// Concurrency bounds MapAll (defaults to GOMAXPROCS)
	Concurrency int
}

// Operation identifies an API operation.
type Operation struct {
	Method      string
	Path        string
	OperationID string
}

// Mapping is the result of mapping one operation.
type Mapping struct {
	Path string
	// Tag is the name of the first tag rule matching Path
	Tag string
	// Excluded operations are dropped from the document
	Excluded bool
}

type tagRule struct {
	name     string
	patterns []*regexp.Regexp
}

// Mapper applies a configuration to API operations.
type Mapper struct {
	direction   Direction
	rewriter    *Rewriter
	reverser    *Reverser
	tags        []tagRule
	concurrency int
	log         *slog.Logger
}

// NewMapper creates a Mapper for a compiled configuration.
func NewMapper(p *Program, opts MapperOptions) (*Mapper, error) {
	m := &Mapper{
		direction:   opts.Direction,
		concurrency: opts.Concurrency,
		log:         logging.OrDefault(opts.Logger, "rewrite"),
	}
	if m.direction == "" {
		m.direction = DirectionReverse
	}
	if m.concurrency <= 0 {
		m.concurrency = runtime.GOMAXPROCS(0)
	}

	var err error
	if m.rewriter, err = NewRewriter(p, opts.Options); err != nil {
		return nil, err
	}
	switch m.direction {
	case DirectionReverse:
		if m.reverser, err = NewReverser(p, opts.Options); err != nil {
			return nil, err
		}
	case DirectionForward:
	default:
		return nil, fmt.Errorf("unknown direction %q", m.direction)
	}

	for _, t := range opts.Tags {
		tr := tagRule{name: t.Name}
		for _, u := range t.URLs {
			re, err := regexp.Compile("^(?:" + u + ")$")
			if err != nil {
				return nil, fmt.Errorf("invalid url %q in tag %q: %w", u, t.Name, err)
			}
			tr.patterns = append(tr.patterns, re)
		}
		m.tags = append(m.tags, tr)
	}
	return m, nil
}

// Map maps a single operation. On error the mapping keeps the original path.
func (m *Mapper) Map(op Operation) (Mapping, error) {
	path, excluded, err := m.mapPath(op)
	if err != nil {
		return Mapping{Path: op.Path}, &OperationError{
			Action:      m.action(),
			Method:      op.Method,
			Path:        op.Path,
			OperationID: op.OperationID,
			Err:         err,
		}
	}
	if excluded {
		return Mapping{Path: path, Excluded: true}, nil
	}

	res := Mapping{Path: path}
	if tag, ok := m.tag(path); ok {
		if tag == "" {
			res.Excluded = true
		}
		res.Tag = tag
	}
	return res, nil
}

func (m *Mapper) action() string {
	if m.direction == DirectionForward {
		return "rewrite"
	}
	return "revert"
}

func (m *Mapper) mapPath(op Operation) (string, bool, error) {
	if m.direction == DirectionForward {
		out, err := m.rewriter.Rewrite(op.Path, op.Method)
		if err != nil {
			return "", false, err
		}
		return out, out == NotFoundPath, nil
	}

	reverted, err := m.reverser.Revert(op.Path, op.Method)
	if err != nil {
		return "", false, err
	}
	if reverted == op.Path {
		return reverted, false, nil
	}
	// a reverted path is only kept if nginx maps it back to where it came from
	again, err := m.rewriter.Rewrite(reverted, op.Method)
	if err != nil || again != op.Path {
		m.log.Debug("reverted path does not round trip, keeping original",
			slog.String("path", op.Path), slog.String("reverted", reverted), slog.String("rewritten", again))
		return op.Path, false, nil
	}
	return reverted, false, nil
}

func (m *Mapper) tag(path string) (string, bool) {
	for _, t := range m.tags {
		for _, re := range t.patterns {
			if re.MatchString(path) {
				return t.name, true
			}
		}
	}
	return "", false
}

// TagNames returns the names of the tag rules in declaration order.
func (m *Mapper) TagNames() []string {
	var names []string
	for _, t := range m.tags {
		if t.name != "" {
			names = append(names, t.name)
		}
	}
	return names
}

// MapAll maps operations concurrently. Results are in input order; failed
// operations keep their original path and all failures are returned joined.
func (m *Mapper) MapAll(ctx context.Context, ops []Operation) ([]Mapping, error) {
	results := make([]Mapping, len(ops))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(m.concurrency)
	for i, op := range ops {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				results[i] = Mapping{Path: op.Path}
				return err
			}
			res, err := m.Map(op)
			results[i] = res
			return err
		})
	}
	return results, p.Wait()
}
