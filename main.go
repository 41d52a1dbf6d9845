package main

import (
	"os"

	"github.com/paulsundquist/yt-aggregator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
