package postgres

import (
	"strings"
)

// assignments collects the SET clause of an UPDATE. Column names are
// literals supplied by the repositories, so the clause never carries input.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v *string) {
	if v == nil {
		return
	}
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, *v)
}

// setNonEmpty skips empty strings as well as nil.
func (a *assignments) setNonEmpty(col string, v *string) {
	if v == nil || *v == "" {
		return
	}
	a.set(col, v)
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// statement builds "UPDATE table SET ... WHERE id = ?" and its arguments.
// Extra clauses are appended verbatim after the assignments.
func (a *assignments) statement(table string, id int64, extra ...string) (string, []any) {
	set := append(append([]string{}, a.cols...), extra...)
	query := "UPDATE " + table + " SET " + strings.Join(set, ", ") + " WHERE id = ?"
	return query, append(append([]any{}, a.args...), id)
}
