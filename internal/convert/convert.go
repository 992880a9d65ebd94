// Package convert wires the documentation pipeline together: discover member
// entries, drop the ones whose type is not public, complete and order them,
// then render the table of contents, the assembly heading and every member.
package convert

import (
	"github.com/agentflare-ai/go-xmldocmd/internal/logging"
	"github.com/agentflare-ai/go-xmldocmd/internal/member"
	"github.com/agentflare-ai/go-xmldocmd/internal/render"
	"github.com/agentflare-ai/go-xmldocmd/internal/xmldoc"
)

// Option configures a Converter.
type Option func(*Converter)

// WithOracle filters entries through a visibility oracle.
func WithOracle(oracle member.Oracle) Option {
	return func(c *Converter) {
		c.oracle = oracle
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Converter turns one documentation export into Markdown.
type Converter struct {
	oracle member.Oracle
	logger logging.Logger
}

// New returns a Converter with no oracle and a silent logger unless options
// say otherwise.
func New(opts ...Option) *Converter {
	c := &Converter{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToMarkdown converts doc, filtering through oracle when it is non-nil.
func ToMarkdown(doc *xmldoc.Document, oracle member.Oracle) (string, error) {
	return New(WithOracle(oracle)).Convert(doc)
}

// Convert runs the pipeline. Any error means no output.
func (c *Converter) Convert(doc *xmldoc.Document) (string, error) {
	units, err := c.Units(doc)
	if err != nil {
		return "", err
	}
	return render.Join(units), nil
}

// Units returns the ordered units without joining them:
// [table of contents, assembly, members...].
func (c *Converter) Units(doc *xmldoc.Document) ([]render.Unit, error) {
	name, err := doc.AssemblyName()
	if err != nil {
		return nil, err
	}
	nodes, err := doc.Members()
	if err != nil {
		return nil, err
	}
	logger := c.logger.WithFields(map[string]any{"assembly": name})

	entries := member.Discover(nodes, logger)
	discovered := len(entries)
	entries, err = member.Filter(entries, c.oracle)
	if err != nil {
		return nil, err
	}
	filtered := discovered - len(entries)
	entries = member.Complete(entries)
	member.Sort(entries)

	members := render.NewMemberUnits(entries)
	units := make([]render.Unit, 0, len(members)+2)
	units = append(units, render.NewTableOfContents(members), render.AssemblyUnit{Name: name})
	for _, u := range members {
		units = append(units, u)
	}
	logger.Info("converted documentation",
		"members", len(nodes),
		"unsupported", len(nodes)-discovered,
		"hidden", filtered,
		"units", len(members),
	)
	return units, nil
}
