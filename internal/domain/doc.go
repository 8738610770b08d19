// Package domain holds the run records crawled from a Spark History server.
//
// Records keep the fields the crawler reasons about as typed struct fields and
// carry every other key the server returns in Extra, so that raw documents
// written to the sink stay complete.
package domain
