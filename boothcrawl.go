// Package boothcrawl ingests photo-booth venue listings from loosely
// structured web sources. It fetches and caches pages, extracts candidate
// venues with rule-based or LLM-assisted extractors, validates them,
// learns reusable extraction patterns per source, and reconciles the result
// with a canonical store of booths.
//
// This package contains domain types, interfaces and pure domain functions
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// gemini/, goquery/).
package boothcrawl
