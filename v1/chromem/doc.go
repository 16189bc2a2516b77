// Package chromem is an embedded implementation of vectordb.Service backed by
// chromem-go. It needs no external service and is used for local development and
// tests; set Config.Path to persist collections to disk.
//
// chromem only stores string metadata. Payload values are flattened with a type
// marker per key and restored on read, so a chunk_index stored as 3 comes back as
// int64(3). Must equality filters on metadata keys are pushed down to chromem's
// where filter; every other condition is evaluated in memory with vectordb.Matches.
package chromem
