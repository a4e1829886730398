// Package castore provides a content-addressed file store on the local filesystem.
//
// Every stored file lives in a directory named by the SHA-256 digest of its
// bytes, under its original name. The directory tree is the entire index:
// there are no manifests or databases to keep in sync.
//
// Basic usage:
//
//	s, _ := castore.Open(castore.WithRoot("/var/lib/castore"))
//
//	// Ingest an existing file by renaming it into place
//	e, _ := s.Move("/tmp/upload-1234", "report.csv", false)
//	fmt.Println(e.Digest, e.Path)
//
//	// Store in-memory content; a bare extension gets a generated name
//	e, _ = s.Write(data, "txt", castore.EncodingBinary, false)
//
//	// Look up and read back
//	e, err := s.Find(e.Digest)
//	data, err := s.Read(e.Digest)
//
//	// Delete
//	err = s.Remove(e.Digest)
//
// Re-ingesting content that is already stored fails with KindConflict
// unless overwrite is requested:
//
//	_, err = s.Move(path, "copy.csv", false)
//	if errors.Is(err, castore.ErrConflict) { ... }
//
// Maintenance:
//
//	report, _ := s.Verify(ctx)        // re-hash every entry, report damage
//	n, _ := s.Sweep(ctx, time.Hour)   // drop abandoned staging files
//	stats, _ := s.Stats()
//
// The root is taken from WithRoot, then the CASTORE_ROOT environment
// variable, then a "castore" directory under the platform temp dir.
package castore
