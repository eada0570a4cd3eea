// Package memory keeps thumbnail extraction inside its container memory
// budget.
//
// Decoding an embedded preview allocates the full bitmap, and a burst of
// large previews can push a small container past its limit. The package
// provides two tools:
//   - [ConfigureFromEnv] sets GOMEMLIMIT from a container limit passed via
//     the Kubernetes Downward API, reserving headroom for libvips and other
//     non-heap allocations
//   - [Monitor] samples heap usage and signals backpressure: the HTTP
//     service answers 503 while it is paused, and batch extraction waits
//
// # Environment Variables
//
//   - GOMEMLIMIT: Standard Go variable; takes precedence when set
//   - MEMORY_LIMIT: Container memory limit in bytes
//   - MEMORY_RATIO: Fraction of MEMORY_LIMIT given to the Go heap
//     (default 0.85)
//
// # Kubernetes
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
package memory
