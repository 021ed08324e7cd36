// Package blobstore abstracts where mesh files come from.
//
// The decoder core consumes byte buffers; blobstore supplies them from the
// local filesystem (memory-mapped), from memory (tests, embedded assets), or
// from S3-compatible object storage via the minio and s3 subpackages.
package blobstore
