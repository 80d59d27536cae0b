package main

import (
	"os"

	"github.com/magabrotheeeer/mentor-gateway/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
