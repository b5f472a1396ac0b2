package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ncobase/feedsync/cmd/feedsync/commands"
)

func main() {
	if err := commands.NewRoot().Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
