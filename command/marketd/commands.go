// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/bitmark-inc/exitwithstatus"
	zmq "github.com/pebbe/zmq4"
)

// setup commands that run without any configuration
//
// returns true if the command was processed
func processSetupCommand(program string, arguments []string) bool {

	command := arguments[0]

	switch command {

	case "gen-identity", "id":
		public, private, err := zmq.NewCurveKeypair()
		if nil != err {
			exitwithstatus.Message("%s: keypair generation error: %s", program, err)
		}
		fmt.Printf("public_key = %q\n", hex.EncodeToString([]byte(zmq.Z85decode(public))))
		fmt.Printf("private_key = %q\n", hex.EncodeToString([]byte(zmq.Z85decode(private))))

	case "version", "v":
		fmt.Printf("%s\n", version)

	case "help", "h", "?":
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [command]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help         (h)      - display this message\n")
		fmt.Printf("  version      (v)      - display version string\n")
		fmt.Printf("  gen-identity (id)     - generate a client key pair for the configuration\n\n")

	default:
		fmt.Printf("unknown command: %q\n", command)
		fmt.Printf("supported commands: help, version, gen-identity\n")
	}

	return true
}
