package session

import (
	"fmt"
	"strings"
)

// metaPrefix distinguishes meta-commands from SQL statements.
const metaPrefix = "."

// commandKind enumerates every meta-command. Keeping the set closed and
// switching exhaustively makes adding commands compile-time checkable.
type commandKind int

const (
	cmdSQL commandKind = iota
	cmdLoad
	cmdTables
	cmdTree
	cmdMode
	cmdExport
	cmdHistory
	cmdCD
	cmdHelp
	cmdQuit
)

// command is one classified input line.
type command struct {
	kind commandKind
	args []string
	// force requests replace-in-place on name collisions (".load!").
	force bool
	// sql carries the statement verbatim for cmdSQL.
	sql string
}

// classify splits an input line into a meta-command or a SQL statement.
// Anything not starting with the meta prefix is SQL, forwarded untouched.
func classify(line string) (command, error) {
	if !strings.HasPrefix(line, metaPrefix) {
		return command{kind: cmdSQL, sql: line}, nil
	}

	fields := strings.Fields(line)
	name := fields[0]
	args := fields[1:]

	switch name {
	case ".load", ".load!":
		return command{kind: cmdLoad, args: args, force: name == ".load!"}, nil
	case ".tables":
		return command{kind: cmdTables}, nil
	case ".tree":
		return command{kind: cmdTree, args: args}, nil
	case ".mode":
		return command{kind: cmdMode, args: args}, nil
	case ".export":
		return command{kind: cmdExport, args: args}, nil
	case ".history":
		return command{kind: cmdHistory}, nil
	case ".cd":
		return command{kind: cmdCD, args: args}, nil
	case ".help":
		return command{kind: cmdHelp}, nil
	case ".quit", ".exit":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("unknown command %s (try .help)", name)
	}
}

// helpText lists the meta-commands, shown by .help.
const helpText = `meta-commands:
  .load <glob ...>    load files matching the patterns as tables
  .load! <glob ...>   same, replacing tables on name collisions
  .tables             list loaded tables
  .tree [dir|table]   show a directory or table as a tree
  .mode [table|tree]  show or switch the output mode
  .export [file]      write the last result as CSV to stdout or a file
  .history            show past input lines
  .cd [dir]           show or change the working directory
  .help               this help
  .quit               exit

anything else is executed as SQL against the loaded tables`
