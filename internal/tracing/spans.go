package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for font build tracing.
const (
	// Catalog attributes
	AttrGlyphsDir  = "catalog.glyphs_dir"
	AttrFileCount  = "catalog.file_count"
	AttrMoveCount  = "catalog.move_count"
	AttrDirFlavor  = "glyph.dir_flavor"
	AttrNameFlavor = "glyph.name_flavor"

	// Output attributes
	AttrGlyphCount   = "font.glyph_count"
	AttrMappingCount = "font.mapping_count"
	AttrOutputPath   = "font.output_path"
	AttrFontFormat   = "font.format"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanBuild            = "build"
	SpanLoad             = "catalog.load"
	SpanStandardize      = "catalog.standardize"
	SpanFallback         = "catalog.fallback_defaults"
	SpanFontPrefix       = "font."
	SpanCollectionPrefix = "collection."
)

// Event names for span events.
const (
	EventGlyphsCollected = "glyphs.collected"
	EventFontWritten     = "font.written"
)

// RecordError marks span as failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
}
