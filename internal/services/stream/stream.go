// Package stream emits an extracted context artifact as an ordered sequence
// of events so rendering and writing can overlap.
package stream

import (
	"context"

	"github.com/devkit-tools/devkit/internal/extractor"
	"github.com/devkit-tools/devkit/internal/types"
)

// EventKind identifies the payload carried by an Event.
type EventKind string

const (
	// EventKindTree carries the rendered project tree block.
	EventKindTree EventKind = "tree"
	// EventKindSection carries one rendered file content section.
	EventKindSection EventKind = "section"
	// EventKindSummary carries the closing summary.
	EventKindSummary EventKind = "summary"
)

// Event is one unit of rendered output. Events arrive in artifact order, so
// concatenating their Text fields reproduces the full artifact.
type Event struct {
	// Kind identifies the payload.
	Kind EventKind
	// Text is the rendered block for tree and section events.
	Text string
	// Section is set on section events.
	Section *types.ContentSection
	// Summary is set on summary events.
	Summary *types.OutputSummary
}

// StreamExtraction runs an extraction and emits its rendered blocks on the
// events channel in artifact order. The channel is not closed; the caller
// owns its lifecycle.
func StreamExtraction(ctx context.Context, options extractor.Options, events chan<- Event) (*types.RenderedContext, error) {
	renderedContext, extractionError := extractor.Extract(options)
	if extractionError != nil {
		return nil, extractionError
	}

	if emitError := emit(ctx, events, Event{Kind: EventKindTree, Text: extractor.RenderHeader(renderedContext)}); emitError != nil {
		return nil, emitError
	}
	for sectionIndex := range renderedContext.Sections {
		section := &renderedContext.Sections[sectionIndex]
		event := Event{
			Kind:    EventKindSection,
			Text:    extractor.RenderSection(section),
			Section: section,
		}
		if emitError := emit(ctx, events, event); emitError != nil {
			return nil, emitError
		}
	}

	summary := extractor.Summarize(renderedContext)
	if emitError := emit(ctx, events, Event{Kind: EventKindSummary, Summary: summary}); emitError != nil {
		return nil, emitError
	}
	return renderedContext, nil
}

// emit sends one event unless the context is cancelled first.
func emit(ctx context.Context, events chan<- Event, event Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case events <- event:
		return nil
	}
}
