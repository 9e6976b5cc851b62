// Package project is the conductor project orchestrator.
//
// A project is a directory with a pods/ subdirectory. Every *.yml file in
// pods/ is a pod and every directory in pods/overrides/ is an override:
//
//	hello/
//	  pods/
//	    frontend.yml
//	    overrides/
//	      development/
//	      production/
//	      test/
//
// Output regenerates <outputDir>/pods for one override so that docker compose
// can run the project from the working tree. Export writes standalone files
// with no interpolations and no build sections to a new directory, with task
// pods under tasks/.
package project
