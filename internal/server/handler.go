package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mvasek/keva-go/internal/command"
	"github.com/mvasek/keva-go/internal/store"
	"github.com/mvasek/keva-go/internal/telemetry/logger"
	"github.com/mvasek/keva-go/pkg/resp"
)

// readChunkSize is how much the read buffer grows per socket read.
const readChunkSize = 4096

// serveConn runs the per-connection loop: read available bytes into the
// pooled buffer, decode, dispatch, reply. An incomplete frame keeps the
// buffer and reads more; a decoded frame clears it.
func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	defer nc.Close()

	connID := ulid.Make().String()
	log := s.log.With("conn_id", connID, "remote", nc.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	buf := s.pools.Get()
	defer buf.Release()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// A connection may sit idle between commands, but once a frame
		// has started arriving the tighter read timeout applies.
		timeout := s.cfg.IdleTimeout
		if buf.Len() > 0 {
			timeout = s.cfg.ReadTimeout
		}
		if timeout > 0 {
			if err := nc.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return
			}
		}

		chunk := buf.Extend(readChunkSize)
		n, err := nc.Read(chunk)
		buf.Truncate(buf.Len() - len(chunk) + n)
		if err != nil && n == 0 {
			logReadError(log, err)
			return
		}

		value, rest, derr := resp.Decode(buf.Bytes())
		if errors.Is(derr, resp.ErrIncomplete) {
			// Keep the buffer; a later read completes the frame.
			continue
		}
		if derr != nil {
			log.Debug("protocol error", "error", derr)
			_ = s.writeError(nc, "ERR protocol error: "+derr.Error())
			return
		}
		if len(rest) != 0 {
			// One frame per read cycle; pipelined bytes are rejected.
			log.Debug("trailing bytes after command", "count", len(rest))
			_ = s.writeError(nc, "ERR protocol error: trailing bytes after command")
			return
		}
		buf.Reset()

		if !s.dispatch(log, nc, value) {
			return
		}
	}
}

// dispatch parses and executes one decoded frame. It reports whether
// the connection stays open: command-level errors get an error reply
// and keep the connection; everything else closes it.
func (s *Server) dispatch(log logger.Logger, nc net.Conn, v resp.Value) bool {
	cmd, err := command.Parse(v)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CommandErrors.WithLabelValues(errClass(err)).Inc()
		}
		werr := s.writeError(nc, errReply(err))
		if command.Recoverable(err) && werr == nil {
			return true
		}
		log.Debug("closing on unrecoverable command error", "error", err)
		return false
	}

	if s.metrics != nil {
		s.metrics.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()
	}

	switch cmd.Kind {
	case command.KindPing:
		return s.writeRaw(nc, resp.RawPong) == nil

	case command.KindCommand:
		return s.writeRaw(nc, resp.RawOK) == nil

	case command.KindQuit:
		_ = s.writeRaw(nc, resp.RawOK)
		return false

	case command.KindEcho:
		return s.writeValue(nc, resp.BulkStringText(cmd.Arg)) == nil

	case command.KindGet:
		val, ok := s.store.Get(cmd.Key)
		if !ok {
			if s.metrics != nil {
				s.metrics.CommandErrors.WithLabelValues("not_exists").Inc()
			}
			return s.writeError(nc, "ERR key does not exist") == nil
		}
		return s.writeValue(nc, val.Wire()) == nil

	case command.KindSet:
		sv, err := store.NewValue(cmd.Value)
		if err != nil {
			if s.metrics != nil {
				s.metrics.CommandErrors.WithLabelValues("invalid_type").Inc()
			}
			return s.writeError(nc, "ERR invalid value type") == nil
		}
		s.store.Set(cmd.Key, sv, cmd.TTL)
		return s.writeRaw(nc, resp.RawOK) == nil

	default:
		return s.writeError(nc, "ERR unknown command") == nil
	}
}

// writeRaw writes a pre-encoded reply under the write deadline.
func (s *Server) writeRaw(nc net.Conn, raw []byte) error {
	if s.cfg.WriteTimeout > 0 {
		if err := nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err := nc.Write(raw)
	return err
}

// writeValue serializes v into a pooled output buffer and writes it.
func (s *Server) writeValue(nc net.Conn, v resp.Value) error {
	out := s.pools.Get()
	defer out.Release()

	out.Set(resp.Append(out.Bytes(), v))
	return s.writeRaw(nc, out.Bytes())
}

// writeError writes "-<msg>\r\n".
func (s *Server) writeError(nc net.Conn, msg string) error {
	out := s.pools.Get()
	defer out.Release()

	out.Set(resp.AppendError(out.Bytes(), msg))
	return s.writeRaw(nc, out.Bytes())
}

// errReply formats a command error as a protocol error payload.
func errReply(err error) string {
	return "ERR " + strings.TrimPrefix(err.Error(), "command: ")
}

// errClass labels a command error for metrics.
func errClass(err error) string {
	switch {
	case errors.Is(err, command.ErrNotExists):
		return "not_exists"
	case errors.Is(err, command.ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, command.ErrInvalidType):
		return "invalid_type"
	case errors.Is(err, command.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, command.ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, command.ErrInvalidCommand):
		return "invalid_command"
	default:
		return "other"
	}
}

func logReadError(log logger.Logger, err error) {
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("client disconnected")
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Debug("connection timed out")
			return
		}
		log.Debug("read failed", "error", err)
	}
}
