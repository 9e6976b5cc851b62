// Package plugins holds the document transforms that run after a pod's
// merged document has been rewritten for output or export.
//
// The Manager runs a fixed chain in order:
//
//	default_tags  add default tags to untagged service images
//	secrets       inject decrypted sops secrets (output only)
//	labels        add io.conductor.* labels to every service
//
// Plugins see the project through the read-only Project interface, so this
// package does not depend on the project package.
package plugins
