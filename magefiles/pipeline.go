//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch builds the binary and runs the fetch stage with default settings.
func Fetch() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "fetch")
}

// Triage builds the binary and runs the triage stage with default settings.
func Triage() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "triage")
}

// Store builds the binary and ingests the annotated table into the results store.
func Store() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "store", "ingest")
}
