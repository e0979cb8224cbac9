// Command qtrace demonstrates and serves the query trace engine: the
// demo subcommand traces a synthetic workload into a trace file, and
// the monitor subcommand exposes a session over HTTP.
package main

import "github.com/tracelab/qtrace/cmd/qtrace/cmd"

func main() {
	cmd.Execute()
}
