// Package extractors provides implementations of the PageExtractor
// interface for the file formats the ingestion pipeline accepts. Each
// extractor knows how to pull ordered per-page text out of one family
// of extensions.
//
// Extractors are registered with the Registry at startup; selection is
// by extension with the highest-priority claimant winning.
package extractors
