// Package pagesense provides site-agnostic structured content extraction.
// It renders arbitrary URLs with a pooled headless browser, analyzes page
// structure, classifies the page type, extracts typed fields per category,
// caches results and learned URL patterns, and renders output in multiple
// formats.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., rod/, goquery/, cache/).
package pagesense
