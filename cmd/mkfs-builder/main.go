package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/KarpelesLab/minivsfs"
)

func main() {
	var actionRan bool

	app := &cli.App{
		Name:  "mkfs-builder",
		Usage: "synthesize a fresh MiniVSFS image",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Required: true, Usage: "output image path"},
			&cli.Uint64Flag{Name: "size-kib", Required: true, Usage: "image size in KiB"},
			&cli.Uint64Flag{Name: "inodes", Required: true, Usage: "inode table capacity"},
		},
		HideHelpCommand: true,
		Writer:          os.Stderr,
		ErrWriter:       os.Stderr,
		ExitErrHandler:  func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			actionRan = true
			return minivsfs.Build(c.String("image"), c.Uint64("size-kib"), c.Uint64("inodes"))
		},
	}

	err := app.Run(os.Args)
	os.Exit(exitCode(err, actionRan))
}

// exitCode maps a pipeline/usage error to the §6.1 exit codes: 2 for
// configuration/usage errors, 1 for everything else (I/O, allocation,
// image validation), 0 for success. An error returned before the Action
// ever ran is a flag/usage error from the CLI layer itself, which is the
// same bucket as a configuration error.
func exitCode(err error, actionRan bool) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "mkfs-builder:", err)
	if !actionRan || errors.Is(err, minivsfs.ErrConfiguration) {
		return 2
	}
	return 1
}
