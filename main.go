package main

import (
	"os"

	"station-tracker-backend/cmd"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		cmd.RunSeed()
		return
	}
	cmd.Run()
}
