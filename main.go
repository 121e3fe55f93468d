package main

import (
	"context"
	"os"

	"github.com/Savit10/streamsense/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
