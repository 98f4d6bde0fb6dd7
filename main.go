package main

import (
	"context"
	"os"

	"github.com/unclesp1d3r/containercrack/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background()))
}
