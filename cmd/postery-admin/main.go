package main

import (
	"context"
	"os"

	"github.com/VitaminP8/postery-admin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
