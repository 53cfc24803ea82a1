package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "simplefs",
		Usage: "inspect and manipulate a SimpleFS disk image",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "blocks",
				Usage: "number of blocks in the image; a new or existing image file is resized to this many blocks",
				Value: 1024,
			},
		},
		ArgsUsage: "DISK_IMAGE",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: simplefs [--blocks N] DISK_IMAGE", 1)
	}
	return RunShell(path, uint32(c.Int("blocks")))
}
