// Command ownbox runs the ownership walkthrough and inspects its journal.
package main

import "github.com/mesh-intelligence/ownbox/internal/cli"

func main() {
	cli.Execute()
}
