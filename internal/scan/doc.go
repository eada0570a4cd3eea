// Package scan finds Paint.NET documents in a directory tree.
//
// A Walker walks the tree on one goroutine and hands candidate files to a
// pool of probe workers, which read the four-byte PDN3 signature. Only
// files whose extension is in DocumentExtensions are probed unless
// Config.AllFiles is set; either way the signature, not the name, decides.
//
//	docs, err := scan.NewWalker(root, scan.DefaultConfig()).Walk(ctx)
//
// The default is three workers, which network filesystems tolerate.
// SCAN_WORKERS overrides it.
package scan
