package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mvasek/keva-go/pkg/resp"
)

var (
	// ErrInvalidCommand reports a top-level value with no command
	// shape: only non-empty arrays and the inline "ping" simple string
	// are commands.
	ErrInvalidCommand = errors.New("command: invalid command")

	// ErrNotExists reports an unknown command keyword.
	ErrNotExists = errors.New("command: command does not exist")

	// ErrInvalidArguments reports a syntactically valid command with a
	// wrong argument count or an unknown modifier.
	ErrInvalidArguments = errors.New("command: invalid arguments")
)

// Kind identifies a command.
type Kind uint8

const (
	// KindPing replies PONG.
	KindPing Kind = iota
	// KindCommand is connection introspection; replies OK.
	KindCommand
	// KindEcho replies with its single argument.
	KindEcho
	// KindGet reads a key.
	KindGet
	// KindSet writes a key, optionally with an expiration.
	KindSet
	// KindQuit asks the server to close the connection.
	KindQuit
)

// String returns the protocol name of the command.
func (k Kind) String() string {
	switch k {
	case KindPing:
		return "PING"
	case KindCommand:
		return "COMMAND"
	case KindEcho:
		return "ECHO"
	case KindGet:
		return "GET"
	case KindSet:
		return "SET"
	case KindQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// keywords is the fixed keyword table. Built once, never mutated;
// lookups go through an upper-cased key.
var keywords = map[string]Kind{
	"PING":    KindPing,
	"COMMAND": KindCommand,
	"ECHO":    KindEcho,
	"GET":     KindGet,
	"SET":     KindSet,
	"QUIT":    KindQuit,
}

// Expiration modifier keywords accepted by SET.
const (
	modifierEX = "EX" // seconds
	modifierPX = "PX" // milliseconds
)

// Command is one typed, validated request. Key, Arg and Value may alias
// the connection's read buffer; a Command never outlives its request.
type Command struct {
	Kind  Kind
	Arg   string     // ECHO payload
	Key   []byte     // GET / SET key
	Value resp.Value // SET value, in wire form
	TTL   time.Duration // SET expiration; zero means none
}

// Parse validates the top-level shape of v and extracts a typed command.
//
// Valid shapes are a non-empty array whose first element is string-like,
// or the inline simple string "ping" (case-insensitive).
func Parse(v resp.Value) (Command, error) {
	switch v.Type {
	case resp.TypeSimpleString:
		if strings.EqualFold(v.Str, "ping") {
			return Command{Kind: KindPing}, nil
		}
		return Command{}, fmt.Errorf("%w: inline %q", ErrInvalidCommand, v.Str)

	case resp.TypeArray:
		if len(v.Array) == 0 {
			return Command{}, fmt.Errorf("%w: empty array", ErrInvalidCommand)
		}
		return parseArray(v.Array)

	default:
		return Command{}, fmt.Errorf("%w: top-level %s", ErrInvalidCommand, v.Type)
	}
}

func parseArray(items []resp.Value) (Command, error) {
	cur := NewCursor(items)

	keyword, err := cur.TakeKeyword()
	if err != nil {
		return Command{}, err
	}

	kind, ok := keywords[keyword]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrNotExists, keyword)
	}

	switch kind {
	case KindPing, KindCommand, KindQuit:
		// Extra elements are tolerated and ignored, matching the
		// reference protocol's lenient PING arity.
		return Command{Kind: kind}, nil

	case KindEcho:
		arg, err := cur.TakeString()
		if err != nil {
			return Command{}, err
		}
		if cur.Remaining() != 0 {
			return Command{}, fmt.Errorf("%w: ECHO takes exactly one argument", ErrInvalidArguments)
		}
		return Command{Kind: KindEcho, Arg: arg}, nil

	case KindGet:
		key, err := cur.TakeBytes()
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindGet, Key: key}, nil

	case KindSet:
		return parseSet(cur)

	default:
		return Command{}, fmt.Errorf("%w: %q", ErrNotExists, keyword)
	}
}

func parseSet(cur *Cursor) (Command, error) {
	key, err := cur.TakeBytes()
	if err != nil {
		return Command{}, err
	}
	value, err := cur.TakeValue()
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Kind: KindSet, Key: key, Value: value}

	modifier, err := cur.TakeKeyword()
	switch {
	case errors.Is(err, ErrOutOfBounds):
		// No expiration modifier present. This is the one place an
		// exhausted cursor is not an error.
		return cmd, nil
	case err != nil:
		return Command{}, err
	}

	var unit time.Duration
	switch modifier {
	case modifierEX:
		unit = time.Second
	case modifierPX:
		unit = time.Millisecond
	default:
		return Command{}, fmt.Errorf("%w: unknown SET modifier %q", ErrInvalidArguments, modifier)
	}

	n, err := cur.TakeInt()
	if err != nil {
		return Command{}, err
	}
	if n <= 0 {
		return Command{}, fmt.Errorf("%w: expiration must be positive, got %d", ErrInvalidArguments, n)
	}

	cmd.TTL = time.Duration(n) * unit
	return cmd, nil
}

// Recoverable reports whether err is a command-level error the
// connection survives: the handler replies with a protocol error and
// keeps reading frames.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotExists) ||
		errors.Is(err, ErrInvalidArguments) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrInvalidNumber)
}
