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
		Name:  "mkfs-adder",
		Usage: "append one file to a MiniVSFS image's root directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Required: true, Usage: "input image path"},
			&cli.StringFlag{Name: "output", Required: true, Usage: "output image path"},
			&cli.StringFlag{Name: "file", Required: true, Usage: "host file to embed"},
		},
		HideHelpCommand: true,
		Writer:          os.Stderr,
		ErrWriter:       os.Stderr,
		ExitErrHandler:  func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			actionRan = true
			return minivsfs.AddFile(c.String("input"), c.String("output"), c.String("file"))
		},
	}

	err := app.Run(os.Args)
	os.Exit(exitCode(err, actionRan))
}

// exitCode maps a pipeline/usage error to the §6.1 exit codes: 2 for
// configuration/usage errors, 1 for I/O, allocation, or image-validation
// errors, 0 for success.
func exitCode(err error, actionRan bool) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "mkfs-adder:", err)
	if !actionRan || errors.Is(err, minivsfs.ErrConfiguration) {
		return 2
	}
	return 1
}
