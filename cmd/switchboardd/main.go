// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/switchboard-io/switchboard/internal/daemon"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to config file")
		socketPath  = flag.String("socket", "", "Unix socket path")
		tcpAddr     = flag.String("tcp", "", "TCP address to listen on")
		allowRemote = flag.Bool("allow-remote", false, "Allow binding to non-loopback addresses (SECURITY WARNING)")
		catalogPath = flag.String("catalog", "", "Catalog path override")
		watch       = flag.Bool("watch", false, "Reload the catalog when the file changes")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("switchboardd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// daemon.Run owns config loading, signal handling, and the SIGHUP
	// reload loop; `switchboard serve` goes through the same path.
	err := daemon.Run(daemon.RunOptions{
		Version:     version,
		Commit:      commit,
		BuildDate:   buildDate,
		ConfigPath:  *configPath,
		SocketPath:  *socketPath,
		TCPAddr:     *tcpAddr,
		AllowRemote: *allowRemote,
		CatalogPath: *catalogPath,
		Watch:       *watch,
	})
	if err != nil {
		os.Exit(1)
	}
}
