//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the trackora project using Mage.
//
// Usage:
//
//	mage build          Compile the trackora binary to bin/
//	mage smoke          Build, then drive a short session in a scratch data dir
//	mage test:all       Run every test
//	mage test:unit      Run the package tests, skipping the binary suite
//	mage test:binary    Run the tests that drive the built binary
//	mage test:golden    Rewrite golden files from current output
//	mage lint           Run go vet, then golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install trackora to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo   = "go"
	binLint = "golangci-lint"

	binaryDir = "bin"
	cmdDir    = "./cmd/trackora"
)

var binaryPath = filepath.Join(binaryDir, "trackora")

// Build compiles the trackora binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-o", binaryPath, cmdDir)
}

// Smoke builds trackora and runs a short tracking session against a
// scratch config and data directory, which is removed afterwards.
func Smoke() error {
	mg.Deps(Build)
	dir, err := os.MkdirTemp("", "trackora-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	session := [][]string{
		{"init"},
		{"protocol", "add", "Read"},
		{"mark", "Read", "1"},
		{"sleep", "set", "1", "7hr"},
		{"show"},
		{"stats", "monthly"},
		{"export"},
	}
	for _, args := range session {
		args = append(args, "--config-dir", dir, "--data-dir", dir, "--today", "2024-04-01")
		if err := sh.RunV(binaryPath, args...); err != nil {
			return fmt.Errorf("trackora %v: %w", args, err)
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", filepath.Base(binaryPath)), binaryPath)
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Lint runs go vet, then golangci-lint.
func Lint() error {
	mg.Deps(Vet)
	return sh.RunV(binLint, "run", "--timeout", "5m", "./...")
}
