// Package main provides the devserve command: a local static file server with
// CORS headers for front-end development.
//
//	devserve [options] [port]
package main

import (
	"context"
	"os"

	"github.com/clean-dependency-project/devserve/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args, os.Stdout, os.Stderr))
}
