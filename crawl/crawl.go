// Package crawl runs sources through the ingestion pipeline. It coordinates
// page discovery, cached fetching, extraction, validation, reconciliation
// and pattern learning for one source per run.
package crawl
