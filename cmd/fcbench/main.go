// Package main provides fcbench, a CLI that drives a full scan → extract →
// index → query cycle against the in-process engine, the same way a host
// embedding libfcindex would, and reports throughput and query latency.
package main

import (
	"os"

	"github.com/fcindex/fcindex/cmd/fcbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
