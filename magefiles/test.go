//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	coverProfile = "coverage.out"
	scenarioDir  = "scenarios"
)

// scenarioFields are the field definitions the sample scenarios rely on.
var scenarioFields = [][2]string{
	{"node", "field_tags"},
	{"node", "field_image"},
	{"node", "field_link"},
	{"user", "roles"},
}

// Test groups test targets (all, unit, cover, scenarios).
type Test mg.Namespace

// All runs the unit tests and then the sample scenarios.
func (t Test) All() error {
	if err := t.Unit(); err != nil {
		return err
	}
	return t.Scenarios()
}

// Unit runs every package test.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Cover runs the package tests with a coverage profile and prints the
// per-function summary.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// Scenarios builds the binary and runs the sample scenarios against a
// throwaway config and data directory.
func (Test) Scenarios() error {
	if _, err := os.Stat(scenarioDir); os.IsNotExist(err) {
		fmt.Printf("No scenario directory found (%s/).\n", scenarioDir)
		return nil
	}
	mg.Deps(Build)

	tmp, err := os.MkdirTemp("", "larder-scenarios-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	larder := func(args ...string) error {
		base := []string{
			"--config-dir", filepath.Join(tmp, "config"),
			"--data-dir", filepath.Join(tmp, "data"),
		}
		return sh.RunV(filepath.Join(binaryDir, binaryName), append(base, args...)...)
	}
	for _, f := range scenarioFields {
		if err := larder("field", "add", f[0], f[1]); err != nil {
			return err
		}
	}
	return larder("run", "--verbose", scenarioDir)
}
