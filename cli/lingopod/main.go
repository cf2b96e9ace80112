package main

import (
	"os"

	lingopodcmder "github.com/lingopod/lingopod/cmd/lingopod"
)

func main() {
	cmd := lingopodcmder.NewLingopodCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
