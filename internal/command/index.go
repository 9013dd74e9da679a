package command

import (
	"strconv"
	"strings"

	str "indy/pkg/string"
)

// Stage distinguishes the two timing points recorded per command.
type Stage string

const (
	StageQueued   Stage = "queued"
	StageExecuted Stage = "executed"
)

// String returns the variant name, e.g. "IssuerCommandCreateSchema".
func (i Index) String() string {
	if !i.Valid() {
		return "Index(" + strconv.Itoa(int(i)) + ")"
	}
	return names[i]
}

// Valid reports whether i is inside the closed taxonomy.
func (i Index) Valid() bool {
	return i >= 0 && int(i) < Count
}

// Tags splits the variant name around "Command" into snake_case command and
// subcommand labels: IssuerCommandCreateSchema -> ("issuer", "create_schema").
func (i Index) Tags() (command, subcommand string) {
	name := i.String()
	head, tail, found := strings.Cut(name, "Command")
	if !found {
		return str.ToSnakeCase(name), ""
	}
	return str.ToSnakeCase(head), str.ToSnakeCase(tail)
}

// All returns every Index in ordinal order.
func All() []Index {
	out := make([]Index, Count)
	for i := range out {
		out[i] = Index(i)
	}
	return out
}

// Parse maps a variant name back to its Index.
func Parse(name string) (Index, bool) {
	for i, n := range names {
		if n == name {
			return Index(i), true
		}
	}
	return 0, false
}
