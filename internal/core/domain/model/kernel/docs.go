// Package kernel provides the shared domain primitives of the CMR workflow:
// currently the UUID value object used to identify shipment delivery records.
//
// Kernel values are immutable and validate themselves; a zero value is never valid.
package kernel
