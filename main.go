package main

import (
	"log"

	"github.com/anoixa/gphotos-grid/cmd"
	"github.com/anoixa/gphotos-grid/config"
)

func main() {
	log.Printf("gphotos-grid %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
