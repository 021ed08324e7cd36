// Package swmesh decodes the proprietary binary mesh container used for
// vehicle geometry and bulk-loads large batches of mesh files under a
// bounded concurrency limit.
//
// # Quick Start
//
// Decode a single in-memory buffer:
//
//	mesh, err := swmesh.Decode(data)
//	if err != nil {
//	    // errors.Is against swmesh.ErrInvalidMagic, swmesh.ErrUnexpectedEOF, ...
//	}
//
// Bulk-load a directory of mesh files:
//
//	store := blobstore.NewLocalStore("./meshes")
//	loader, _ := swmesh.NewLoader(store, swmesh.WithMaxConcurrent(15))
//	defer loader.Close()
//
//	results, err := loader.LoadAll(ctx, names)
//	for name, r := range results {
//	    if r.Err != nil {
//	        // one file's failure never affects its siblings
//	    }
//	}
//
// # Error Model
//
// Malformed input is an expected outcome, not an exceptional one. Every
// decode failure is a typed error classified by a package sentinel
// (ErrUnexpectedEOF, ErrInvalidMagic, ErrUnsupportedVersion, ErrSizeMismatch,
// ErrIndexOutOfRange, ...) and carrying positional detail recoverable via
// errors.As. Bulk loading returns one Result per input; partial success is
// the common case.
//
// # Admission Control
//
// LoadAll never runs more than the configured number of loads concurrently.
// Throughput peaks well below "all at once" on most storage, so the limit is
// a constructor parameter rather than a constant.
package swmesh
