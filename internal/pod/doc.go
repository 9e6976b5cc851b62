// Package pod loads pod definitions and their override overlays and produces
// the merged compose documents the output pipeline writes.
//
// A pod is a docker-compose file directly under pods/. Each override is a
// directory under pods/overrides/ that may hold an overlay with the same file
// name:
//
//	pods/
//	  common.env
//	  frontend.yml
//	  migrate.yml
//	  overrides/
//	    development/
//	      common.env
//	      frontend.yml
//	    production/
//
// conductor metadata lives in the compose extension field x-conductor:
//
//	x-conductor:
//	  type: task
//
// # Merging
//
// Overlays are deep merged onto the base file. Mappings merge recursively,
// networks/depends_on/env_file lists are unioned, environment and labels are
// normalized to mappings first, and every other value is replaced.
//
// # Document rewrites
//
// A merged Document goes through MakeStandalone and then either
// UpdateForOutput or UpdateForExport before WriteToPath.
package pod
