package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/tinyptr/errors"
	"github.com/wippyai/tinyptr/table"
)

const helpText = `commands:
  alloc <int>      store a value, bind it to the next $n
  get <$n>         print the value
  set <$n> <int>   replace the value
  free <$n>        release the slot and print the value
  resize           double the capacity
  clear            free every slot
  stats            print occupancy counters
  dump             list occupied slots
  help             show this text`

// session runs table commands against a single table of int64 values.
// Handles are bound to names $0, $1, ... in the order they were issued.
// In strict mode a stale handle fails the command instead of printing
// "not found".
type session struct {
	table   *table.Table[int64]
	handles []table.Handle
	out     io.Writer
	strict  bool
}

func newSession(capacity int, out io.Writer) *session {
	return &session{
		table: table.New[int64](capacity),
		out:   out,
	}
}

// Run executes commands read from r, one per line or separated by ';'.
// It stops at the first error and annotates it with the line number.
func (s *session) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		for _, cmd := range strings.Split(scanner.Text(), ";") {
			if err := s.Exec(cmd); err != nil {
				var e *errors.Error
				if stderrors.As(err, &e) {
					e.Path = append([]string{fmt.Sprintf("line %d", lineNo)}, e.Path...)
				}
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "read script")
	}
	return nil
}

// Exec executes a single command. Blank lines and # comments are ignored.
func (s *session) Exec(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "alloc":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		v, err := parseValue(args[0])
		if err != nil {
			return err
		}
		h := s.table.Allocate(v)
		s.handles = append(s.handles, h)
		fmt.Fprintf(s.out, "$%d = %s\n", len(s.handles)-1, h)

	case "get":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		v, ok := s.table.Get(h)
		if !ok {
			return s.missing(errors.PhaseLookup, h)
		}
		fmt.Fprintln(s.out, v)

	case "set":
		if err := wantArgs(cmd, args, 2); err != nil {
			return err
		}
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		v, err := parseValue(args[1])
		if err != nil {
			return err
		}
		if !s.table.Update(h, func(p *int64) { *p = v }) {
			return s.missing(errors.PhaseLookup, h)
		}
		fmt.Fprintln(s.out, "ok")

	case "free":
		if err := wantArgs(cmd, args, 1); err != nil {
			return err
		}
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		v, ok := s.table.Free(h)
		if !ok {
			return s.missing(errors.PhaseFree, h)
		}
		fmt.Fprintln(s.out, v)

	case "resize":
		if err := wantArgs(cmd, args, 0); err != nil {
			return err
		}
		s.table.Resize()
		fmt.Fprintf(s.out, "capacity %d\n", s.table.Capacity())

	case "clear":
		if err := wantArgs(cmd, args, 0); err != nil {
			return err
		}
		s.table.Clear()
		fmt.Fprintln(s.out, "cleared")

	case "stats":
		if err := wantArgs(cmd, args, 0); err != nil {
			return err
		}
		st := s.table.Stats()
		fmt.Fprintf(s.out, "capacity=%d allocated=%d free=%d resizes=%d load=%.2f\n",
			st.Capacity, st.Allocated, st.Free, st.Resizes, st.LoadFactor)

	case "dump":
		if err := wantArgs(cmd, args, 0); err != nil {
			return err
		}
		for h, v := range s.table.All() {
			fmt.Fprintf(s.out, "%s = %d\n", h, v)
		}

	case "help":
		fmt.Fprintln(s.out, helpText)

	default:
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(cmd).
			Detail("unknown command %q", cmd).
			Build()
	}
	return nil
}

// missing reports a handle that no longer resolves.
func (s *session) missing(phase errors.Phase, h table.Handle) error {
	if s.strict {
		return errors.StaleHandle(phase, h.String())
	}
	fmt.Fprintln(s.out, "not found")
	return nil
}

// resolve maps a $n name to the handle it was bound to.
func (s *session) resolve(name string) (table.Handle, error) {
	if !strings.HasPrefix(name, "$") {
		return table.Handle{}, errors.InvalidInput(errors.PhaseParse,
			fmt.Sprintf("handle reference %q must look like $n", name))
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return table.Handle{}, errors.ParseFailed(name, err)
	}
	if n < 0 || n >= len(s.handles) {
		return table.Handle{}, errors.NotFound(errors.PhaseLookup, "handle", name)
	}
	return s.handles[n], nil
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(cmd).
			Detail("expected %d argument(s), got %d", n, len(args)).
			Build()
	}
	return nil
}

func parseValue(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			GoType("int64").
			Value(s).
			Cause(err).
			Detail("invalid value %q", s).
			Build()
	}
	return v, nil
}
