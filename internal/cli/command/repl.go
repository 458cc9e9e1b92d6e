package command

import (
	"github.com/urfave/cli/v2"

	"github.com/mvasek/keva-go/internal/cli/repl"
)

// ReplCommand starts the interactive shell.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive shell against the server",
		Action: func(c *cli.Context) error {
			cl, err := Connect(c)
			if err != nil {
				return err
			}
			defer cl.Close()

			r := repl.New(cl)
			return r.Run()
		},
	}
}
