//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, binary, golden).
type Test mg.Namespace

// binaryPkg is the package whose tests build and run the binary.
const binaryPkg = "github.com/mesh-intelligence/trackora/cmd/trackora"

// goldenPkgs hold goldie fixtures under testdata/golden.
var goldenPkgs = []string{"./internal/engine", "./internal/cli"}

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the package tests, skipping the binary suite.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && pkg != binaryPkg {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Binary runs the tests that build trackora and drive it as a process.
func (Test) Binary() error {
	return sh.RunV(binGo, "test", "-v", "./cmd/trackora")
}

// Golden rewrites the golden files from the current output.
func (Test) Golden() error {
	args := append([]string{"test"}, goldenPkgs...)
	args = append(args, "-update")
	return sh.RunV(binGo, args...)
}
