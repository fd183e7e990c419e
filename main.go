// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Main entrypoint for camsync application

package main

import (
	"fmt"
	"os"

	"camsync/internal/logging"
)

// root represents top level of camsync command, including dispatching to
// subcommands.
func root(args []string) error {
	usage := `Camsync - four-camera frame/GPS synchronization tool

Usage:

    camsync <command> [arguments] [-h|-help]

The commands are:

    extract     extract frames from the four camera videos with GPS sync
    mapgen      create interactive street map from an extract report
    dump-conf   output actual application configuration
    version     print camsync version and exit

Use "camsync <command> -h|-help" for more information about command.`

	if len(args) < 1 {
		fmt.Println(usage)
		return &AppError{msg: "please, specify command", exitCode: 2}
	}

	switch args[0] {
	case "extract":
		return CreateExtractCommand().Run(args[1:])
	case "mapgen":
		return CreateMapGenCommand().Run(args[1:])
	case "dump-conf", "dump":
		return CreateDumpConfCommand().Run(args[1:])
	case "version":
		printVersion()
		return nil
	case "-h", "-help", "--help", "?":
		fmt.Println(usage)
		return &AppError{
			exitCode: 2,
		}
	default:
		// No commands were matched at this point, so bail out with default usage message.
		fmt.Println(usage)
		return &AppError{
			msg:      "unknown command/flag",
			exitCode: 2,
		}
	}
}

func main() {
	// Enable info logger by default and early enough.
	logging.EnableInfoLogger()

	if err := root(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		switch e := err.(type) {
		case *AppError:
			os.Exit(e.ExitCode())
		default:
			os.Exit(1)
		}
	}
	os.Exit(0)
}
