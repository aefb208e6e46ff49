// Package project loads the orchestrator's per-project configuration.
//
// Configuration lives in "prebuild.yaml" at the project root. Values present
// in the file replace the defaults from [Default]; absent keys keep their
// default, and unknown keys are rejected so typos surface early. When no
// project file exists, a user-level file in the XDG config directory is used
// instead.
//
// Example prebuild.yaml:
//
//	sidecar:
//	  prefix: nrsc5
//	  script: ./build_scripts/nrsc5.sh
//	native:
//	  source: build/SoapySDR
//	  configure_args: ["-DCMAKE_BUILD_TYPE=Release"]
//	  env: ["CMAKE_BUILD_PARALLEL_LEVEL=8"]
//	triple:
//	  table:
//	    - {os: linux, arch: riscv64, triple: riscv64gc-unknown-linux-gnu}
package project
