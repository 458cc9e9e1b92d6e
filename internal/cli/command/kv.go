package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mvasek/keva-go/internal/cli/output"
)

// PingCommand checks server liveness.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server is alive",
		Action: func(c *cli.Context) error {
			cl, err := Connect(c)
			if err != nil {
				return err
			}
			defer cl.Close()

			if err := cl.Ping(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "PONG")
			return nil
		},
	}
}

// EchoCommand sends a message and prints the server's echo.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message off the server",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one argument")
			}

			cl, err := Connect(c)
			if err != nil {
				return err
			}
			defer cl.Close()

			v, err := cl.Do("ECHO", c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, output.Reply(v))
			return nil
		},
	}
}

// GetCommand reads one key.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value stored at a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one key")
			}

			cl, err := Connect(c)
			if err != nil {
				return err
			}
			defer cl.Close()

			v, err := cl.Get(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, output.Reply(v))
			return nil
		},
	}
}

// SetCommand writes one key.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value at a key",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Expire the key after this duration (e.g. 30s, 5m)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("set requires a key and a value")
			}

			cl, err := Connect(c)
			if err != nil {
				return err
			}
			defer cl.Close()

			var ttl time.Duration
			if d := c.Duration("ttl"); d > 0 {
				ttl = d
			}
			if err := cl.Set(c.Args().Get(0), c.Args().Get(1), ttl); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "OK")
			return nil
		},
	}
}
