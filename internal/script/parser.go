// Package script parses and executes line-oriented operation scripts against
// an ordered map.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse errors.
var (
	ErrUnknownOp = errors.New("unknown operation")
	ErrArity     = errors.New("wrong number of arguments")
)

// Op names a script operation.
type Op string

// Supported operations.
const (
	OpPut      Op = "put"
	OpGet      Op = "get"
	OpRemove   Op = "remove"
	OpContains Op = "contains"
	OpHasValue Op = "has-value"
	OpSize     Op = "size"
	OpEmpty    Op = "empty"
	OpClear    Op = "clear"
	OpCheck    Op = "check"
	OpDump     Op = "dump"
	OpRange    Op = "range"
	OpMin      Op = "min"
	OpMax      Op = "max"
)

const commentPrefix = "#"

// arity is the accepted argument count of an operation. A variadic operation
// joins everything after its fixed arguments into one trailing argument.
type arity struct {
	fixed int
	rest  bool
}

var arities = map[Op]arity{
	OpPut:      {fixed: 1, rest: true},
	OpGet:      {fixed: 1},
	OpRemove:   {fixed: 1},
	OpContains: {fixed: 1},
	OpHasValue: {fixed: 0, rest: true},
	OpSize:     {},
	OpEmpty:    {},
	OpClear:    {},
	OpCheck:    {},
	OpDump:     {},
	OpRange:    {fixed: 2},
	OpMin:      {},
	OpMax:      {},
}

// Command is one parsed script line.
type Command struct {
	Line int
	Op   Op
	Args []string
}

// String renders the command back into script syntax.
func (c Command) String() string {
	return strings.TrimSpace(string(c.Op) + " " + strings.Join(c.Args, " "))
}

// Parse reads a script. Blank lines and lines starting with # are skipped.
// Values of put and has-value span the rest of the line.
func Parse(r io.Reader) ([]Command, error) {
	var commands []Command

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		cmd, err := parseLine(lineNo, line)
		if err != nil {
			return nil, err
		}

		commands = append(commands, cmd)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	return commands, nil
}

func parseLine(lineNo int, line string) (Command, error) {
	fields := strings.Fields(line)
	op := Op(strings.ToLower(fields[0]))

	want, ok := arities[op]
	if !ok {
		return Command{}, fmt.Errorf("line %d: %w: %q", lineNo, ErrUnknownOp, fields[0])
	}

	args := fields[1:]

	switch {
	case want.rest && len(args) < want.fixed+1:
		return Command{}, fmt.Errorf("line %d: %w: %s takes at least %d", lineNo, ErrArity, op, want.fixed+1)
	case !want.rest && len(args) != want.fixed:
		return Command{}, fmt.Errorf("line %d: %w: %s takes %d", lineNo, ErrArity, op, want.fixed)
	case want.rest:
		args = append(args[:want.fixed:want.fixed], strings.Join(args[want.fixed:], " "))
	}

	return Command{Line: lineNo, Op: op, Args: args}, nil
}
