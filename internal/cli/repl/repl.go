// Package repl provides the interactive shell for keva-cli.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvasek/keva-go/internal/cli/client"
	"github.com/mvasek/keva-go/internal/cli/output"
)

// REPL reads commands from input, sends them over the client, and
// prints formatted replies.
type REPL struct {
	client  *client.Client
	input   io.Reader
	output  io.Writer
	history *History
}

// New creates a REPL bound to an open client connection.
func New(cl *client.Client) *REPL {
	return &REPL{
		client:  cl,
		input:   os.Stdin,
		output:  os.Stdout,
		history: NewHistory(),
	}
}

// Run starts the loop. It returns on EOF, on "exit"/"quit", or on a
// transport failure; server error replies are printed and the loop
// continues.
func (r *REPL) Run() error {
	_ = r.history.Load()
	defer func() { _ = r.history.Save() }()

	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, "keva> ")

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.history.Add(line)

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		if err := r.execute(line); err != nil {
			return err
		}
	}
}

func (r *REPL) execute(line string) error {
	args, err := SplitLine(line)
	if err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}

	v, err := r.client.Do(args...)
	if errors.Is(err, client.ErrServerError) {
		// Error replies are part of the conversation, not a failure.
		fmt.Fprintf(r.output, "(error) %s\n", strings.TrimPrefix(err.Error(), client.ErrServerError.Error()+": "))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output, output.Reply(v))
	return nil
}

// SplitLine tokenizes a command line. Double and single quotes group
// words; there is no escape processing inside quotes.
func SplitLine(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote byte
		open  bool
	)

	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case open:
			if ch == quote {
				args = append(args, cur.String())
				cur.Reset()
				open = false
			} else {
				cur.WriteByte(ch)
			}
		case ch == '"' || ch == '\'':
			flush()
			quote = ch
			open = true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}

	if open {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return args, nil
}
