// logseek - seek by time in large log files
//
// logseek positions a reader at the first line at or after a requested time
// in a large, append-only, timestamp ordered log file and prints forward from
// there.
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/ccollicutt/logseek/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
