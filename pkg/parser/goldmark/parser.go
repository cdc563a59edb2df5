// Package goldmark provides a Parser implementation using the goldmark library.
package goldmark

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/lint"
	"github.com/inkloom/inkloom/pkg/mdast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
	FlavorMkDocs     = "mkdocs"
	FlavorMDX        = "mdx"
	FlavorQuarto     = "quarto"
	FlavorRMarkdown  = "rmarkdown"
	FlavorObsidian   = "obsidian"
	FlavorKramdown   = "kramdown"
)

// knownFlavors lists every flavor the parser will configure distinctly.
// Flavors not in this set fall back to FlavorCommonMark.
var knownFlavors = map[string]bool{
	FlavorCommonMark: true,
	FlavorGFM:        true,
	FlavorMkDocs:     true,
	FlavorMDX:        true,
	FlavorQuarto:     true,
	FlavorRMarkdown:  true,
	FlavorObsidian:   true,
	FlavorKramdown:   true,
}

// Parser implements lint.Parser using goldmark.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts raw Markdown bytes into a fully-populated FileSnapshot.
//
// The method:
//  1. Checks for context cancellation.
//  2. Builds a FileSnapshot shell with path, content, and lines.
//  3. Parses content with goldmark.
//  4. Builds the mdast.Node tree from goldmark AST.
//  5. Tokenizes the content.
//  6. Assigns token ranges to nodes.
//  7. Sets File back-references throughout the tree.
//  8. Validates the token stream.
//
// Returns nil and an error if parsing fails or context is cancelled.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*FileSnapshot, error) {
	// Check for early cancellation.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	// Create the snapshot shell.
	snapshot := &FileSnapshot{
		Path:    path,
		Content: copyContent(content),
		Lines:   mdast.BuildLines(content),
		Flavor:  p.flavor,
	}

	// Parse with goldmark.
	reader := text.NewReader(snapshot.Content)
	gmDoc := p.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	// Check for cancellation after parsing.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	// Build mdast.Node tree from goldmark AST.
	mapper := newMapper(snapshot.Content)
	snapshot.Root = mapper.mapDocument(gmDoc)

	// Tokenize content.
	snapshot.Tokens = Tokenize(snapshot.Content)

	// Assign token ranges to nodes.
	assigner := NewTokenRangeAssigner(snapshot.Tokens, snapshot.Content)
	assigner.AssignRanges(snapshot.Root, gmDoc)

	// Set File back-references.
	mdast.SetFile(snapshot.Root, snapshot)

	// Validate tokens.
	if !mdast.ValidateTokens(snapshot.Tokens, len(snapshot.Content)) {
		return nil, errors.New("invalid token stream: tokens do not cover content")
	}

	return snapshot, nil
}

// FileSnapshot is a type alias for mdast.FileSnapshot for convenience.
type FileSnapshot = mdast.FileSnapshot

// flavorOrDefault returns the flavor if known, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	if knownFlavors[flavor] {
		return flavor
	}
	return FlavorCommonMark
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
// Every flavor except pure CommonMark is a documented-prose dialect layered
// on top of GFM (tables, strikethrough, autolinks, task lists): MkDocs,
// Quarto, R Markdown, Obsidian, and Kramdown/Jekyll source files all commonly
// contain GFM tables and task lists in the wild, and none of those flavors
// forbid them, so the GFM extension set is the right base for all of them.
// Flavor-specific constructs they add on top (admonitions, JSX blocks,
// wikilinks, attribute lists) are recognized by targeted secondary passes in
// pkg/lint (see RuleContext's flavor-aware helpers), not by the goldmark
// parser itself.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	default:
		opts = append(opts,
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	}

	return goldmark.New(opts...)
}

// Factory implements lint.ParserFactory, caching one *Parser per flavor so
// repeated Resolve calls for the same flavor (the common case across a run
// of files that mostly share one flavor) don't rebuild a goldmark.Markdown
// instance each time.
type Factory struct {
	mu      sync.Mutex
	parsers map[string]*Parser
}

// NewFactory creates an empty, ready-to-use Factory.
func NewFactory() *Factory {
	return &Factory{parsers: make(map[string]*Parser)}
}

// ForFlavor returns the cached Parser for flavor, creating it on first use.
func (f *Factory) ForFlavor(flavor config.Flavor) lint.Parser {
	key := flavorOrDefault(string(flavor))

	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.parsers[key]; ok {
		return p
	}
	p := New(key)
	f.parsers[key] = p
	return p
}

// copyContent creates a copy of the content slice to ensure immutability.
func copyContent(content []byte) []byte {
	if content == nil {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
