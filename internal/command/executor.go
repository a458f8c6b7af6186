package command

import (
	"fmt"
	"strings"

	"github.com/cabewaldrop/rowdb/internal/record"
	"github.com/cabewaldrop/rowdb/internal/table"
)

// HelpText lists the commands understood by Parse.
const HelpText = `Available commands:
  insert <id> <username> <email>   Store a row
  select                           Print every row
  .help                            Show this help message
  .exit                            Flush and exit`

// Result represents the result of executing a statement.
type Result struct {
	Rows    []record.Record
	Message string

	// Exit is set when the statement asks the command loop to stop.
	Exit bool
}

// String formats the result for display.
func (r *Result) String() string {
	if r.Message != "" {
		return r.Message
	}
	if len(r.Rows) == 0 {
		return "(no rows)"
	}

	var sb strings.Builder
	for i, row := range r.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(row.String())
	}
	return sb.String()
}

// Executor runs statements against a table.
type Executor struct {
	table *table.Table
}

// NewExecutor creates an executor for tbl.
func NewExecutor(tbl *table.Table) *Executor {
	return &Executor{table: tbl}
}

// Table returns the table the executor runs against.
func (e *Executor) Table() *table.Table {
	return e.table
}

// Execute runs a parsed statement.
func (e *Executor) Execute(stmt Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *MetaCommand:
		if s.Name == MetaExit {
			return &Result{Message: "Bye.", Exit: true}, nil
		}
		return &Result{Message: HelpText}, nil

	case *InsertStatement:
		if err := e.table.Insert(s.Record); err != nil {
			return nil, err
		}
		return &Result{Message: "Executed."}, nil

	case *SelectStatement:
		rows, err := e.table.Scan()
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil

	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// ExecuteLine parses and executes one input line. A blank line yields a
// nil result.
func (e *Executor) ExecuteLine(line string) (*Result, error) {
	stmt, err := Parse(line)
	if err != nil || stmt == nil {
		return nil, err
	}
	return e.Execute(stmt)
}
