// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"stackfire/cmd"
)

func main() {
	// profile only if the environment variable is set
	if os.Getenv("STACKFIRE_PROFILE") != "" {
		cpuFile, err := os.Create("cpu.prof")
		if err != nil {
			panic(err)
		}
		defer cpuFile.Close()

		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()

		defer func() {
			fmt.Printf("Profiling data written to cpu.prof\n")
			fmt.Printf("To analyze, use:\n")
			fmt.Printf("  go tool pprof cpu.prof\n")
		}()
	}
	cmd.Execute()
}
