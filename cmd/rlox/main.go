// Command rlox is the Lox interpreter's entry point.
package main

import (
	"os"

	"github.com/mna/mainer"

	"rlox/internal/climain"
)

func main() {
	os.Exit(int(climain.Run(os.Args, mainer.CurrentStdio())))
}
