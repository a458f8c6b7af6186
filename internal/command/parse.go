// Package command parses and executes the line-oriented command language.
//
// The grammar is deliberately tiny:
//
//	.exit | .help                      meta commands
//	insert <id> <username> <email>     store one row
//	select                             print every row
//
// Tokens are separated by whitespace, so usernames and emails cannot
// contain spaces.
package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cabewaldrop/rowdb/internal/record"
)

// ParseError reports a line that does not match the grammar.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

// Parse error messages.
const (
	msgUnknownCommand = "unknown command"
	msgInsertArgs     = "invalid insert expected 3 args"
	msgInvalidID      = "invalid id. not a number"
	msgIDRange        = "invalid id. out of range"
	msgSelectArgs     = "invalid select expected no args"
)

// Statement is a parsed command line.
type Statement interface {
	statement()
}

// MetaCommand is a dot command such as .exit.
type MetaCommand struct {
	Name string
}

// InsertStatement stores one record.
type InsertStatement struct {
	Record record.Record
}

// SelectStatement enumerates all records.
type SelectStatement struct{}

func (*MetaCommand) statement()     {}
func (*InsertStatement) statement() {}
func (*SelectStatement) statement() {}

// Meta command names.
const (
	MetaExit = ".exit"
	MetaHelp = ".help"
)

// Parse turns one input line into a statement. A blank line yields a nil
// statement and no error.
func Parse(line string) (Statement, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	if strings.HasPrefix(line, ".") {
		return parseMeta(line)
	}

	words := strings.Fields(line)
	switch words[0] {
	case "insert":
		return parseInsert(words[1:])
	case "select":
		if len(words) != 1 {
			return nil, &ParseError{Msg: msgSelectArgs}
		}
		return &SelectStatement{}, nil
	default:
		return nil, &ParseError{Msg: msgUnknownCommand}
	}
}

func parseMeta(line string) (Statement, error) {
	switch line {
	case MetaExit, MetaHelp:
		return &MetaCommand{Name: line}, nil
	default:
		return nil, &ParseError{Msg: msgUnknownCommand}
	}
}

func parseInsert(args []string) (Statement, error) {
	if len(args) != 3 {
		return nil, &ParseError{Msg: msgInsertArgs}
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, &ParseError{Msg: msgIDRange}
		}
		return nil, &ParseError{Msg: msgInvalidID}
	}

	return &InsertStatement{Record: record.Record{
		ID:       uint32(id),
		Username: args[1],
		Email:    args[2],
	}}, nil
}
