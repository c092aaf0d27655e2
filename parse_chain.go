package rematch

import (
	"fmt"
)

// ParseChain is the ordered list of patterns tried for one declared type.
//
// For a struct the chain holds its patterns in declaration order. For an
// enum it holds every variant's patterns, variants in declaration order
// and patterns in declaration order within each variant. A variant without
// patterns contributes no step and can never be selected.
type ParseChain struct {
	TypeName string      // TypeName is the declared type being parsed
	Head     *ParseStep  // Head is the first step in the chain
	Conv     *Converters // Conversion capability for field binding
}

// ParseStep represents a single pattern attempt in the chain
type ParseStep struct {
	Next    *ParseStep // Next is the next step in the current chain.
	Pattern Pattern    // Pattern this step matches with
	Matcher Matcher    // Compiled Pattern, shared through the registry
	Variant string     // Variant selected on match, empty for structs
	Shape   Shape      // Shape bound on match
}

// Execute runs the chain against input. The first step whose matcher finds
// a match decides the outcome: its binding result is returned as is, and
// no later step is tried even if binding fails. A search error stops the
// chain with a *MatchError.
func (chain *ParseChain) Execute(input string) (*Value, error) {
	for step := chain.Head; step != nil; step = step.Next {
		caps, ok, err := step.Matcher.FindCaptures(input)
		if err != nil {
			return nil, &MatchError{
				Type:    chain.TypeName,
				Pattern: step.Pattern.ID,
				Input:   input,
				Err:     err,
			}
		}
		if !ok {
			continue
		}
		return chain.doStep(step, caps, input)
	}

	return nil, &NoMatchError{Type: chain.TypeName, Input: input}
}

// doStep binds the captures of the matching step
func (chain *ParseChain) doStep(step *ParseStep, caps Captures, input string) (*Value, error) {
	fields, err := bindShape(step.Shape, caps, chain.Conv, binding{
		TypeName: chain.TypeName,
		Variant:  step.Variant,
		Pattern:  step.Pattern.ID,
		Input:    input,
	})
	if err != nil {
		return nil, err
	}
	return newValue(chain.TypeName, step.Variant, step.Shape, fields), nil
}

// Len returns the number of steps in the chain.
func (chain *ParseChain) Len() int {
	n := 0
	for step := chain.Head; step != nil; step = step.Next {
		n++
	}
	return n
}

// NewParseChain compiles every pattern of decl through the registry and
// links the steps in matching order.
func NewParseChain(decl TypeDecl, reg *PatternRegistry, conv *Converters) (*ParseChain, error) {
	var head, current *ParseStep

	appendStep := func(variant string, shape Shape, pattern Pattern) error {
		matcher, err := reg.GetOrBuild(pattern)
		if err != nil {
			return err
		}

		step := &ParseStep{
			Pattern: pattern,
			Matcher: matcher,
			Variant: variant,
			Shape:   shape,
		}
		if head == nil {
			head = step
		} else {
			current.Next = step
		}
		current = step
		return nil
	}

	switch decl.Kind {
	case KindStruct:
		for _, pattern := range decl.Patterns {
			if err := appendStep("", decl.Shape, pattern); err != nil {
				return nil, err
			}
		}
	case KindEnum:
		for _, variant := range decl.Variants {
			for _, pattern := range variant.Patterns {
				if err := appendStep(variant.Name, variant.Shape, pattern); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownDeclKind, int(decl.Kind))
	}

	return &ParseChain{
		TypeName: decl.Name,
		Head:     head,
		Conv:     conv,
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// Parser
///////////////////////////////////////////////////////////////////////////////

// Parser parses strings into Values of one declared type. It is immutable
// and safe for concurrent use.
type Parser struct {
	decl  TypeDecl
	chain *ParseChain
}

type ParserOpts struct {
	Registry   *PatternRegistry // Defaults to DefaultPatternRegistry()
	Converters *Converters      // Defaults to DefaultConverters()
}

// NewParser validates decl and compiles all of its patterns. A malformed
// pattern is reported here as a *CompileError; Parse never compiles.
func NewParser(decl TypeDecl, opts ParserOpts) (*Parser, error) {
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = DefaultPatternRegistry()
	}
	conv := opts.Converters
	if conv == nil {
		conv = DefaultConverters()
	}

	chain, err := NewParseChain(decl, reg, conv)
	if err != nil {
		return nil, err
	}

	return &Parser{decl: decl, chain: chain}, nil
}

// MustNewParser is like NewParser but panics on error. It simplifies
// initialization of package-level parsers.
func MustNewParser(decl TypeDecl, opts ParserOpts) *Parser {
	p, err := NewParser(decl, opts)
	if err != nil {
		panic(fmt.Sprintf("rematch: %v", err))
	}
	return p
}

// Parse converts input into a Value. It returns a *NoMatchError if no
// pattern matches, a *BindError if the first matching pattern could not
// be bound and a *MatchError if the engine failed a search.
func (p *Parser) Parse(input string) (*Value, error) {
	return p.chain.Execute(input)
}

// Decl returns the declaration the parser was built from.
func (p *Parser) Decl() TypeDecl {
	return p.decl
}

// GroupIssue reports a pattern that has fewer capture groups than its
// shape has fields. Such a pattern always fails binding with MissingGroup.
type GroupIssue struct {
	Pattern Pattern
	Groups  int
	Fields  int
}

func (gi GroupIssue) String() string {
	return fmt.Sprintf("pattern %s has %d capture groups but its shape has %d fields",
		gi.Pattern.ID, gi.Groups, gi.Fields)
}

// GroupIssues lists the patterns whose group count cannot cover their
// shape. An empty result means every field has a group to bind from.
func (p *Parser) GroupIssues() []GroupIssue {
	var issues []GroupIssue
	for step := p.chain.Head; step != nil; step = step.Next {
		groups := step.Matcher.NumGroups()
		if fields := len(step.Shape.Fields); groups < fields {
			issues = append(issues, GroupIssue{
				Pattern: step.Pattern,
				Groups:  groups,
				Fields:  fields,
			})
		}
	}
	return issues
}
