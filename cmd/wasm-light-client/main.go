package main

import (
	"os"

	"github.com/cosmos/wasm-light-client/cmd/wasm-light-client/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
