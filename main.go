// main is the entry point for the smartertips CLI.
package main

import (
	"github.com/NoahAizen44/SmarterTips/cmd"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/store"
)

func main() {
	defer store.CloseStores()
	if err := cmd.Execute(); err != nil {
		store.CloseStores()
		contract.LogFatal("Cannot run smartertips", err)
	}
}
