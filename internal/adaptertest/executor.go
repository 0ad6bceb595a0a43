// Package adaptertest provides a recording adapter.Executor for asserting the
// SQL an adapter renders without a database.
package adaptertest

import (
	"context"
	"strings"

	"github.com/root-talis/kaizou/adapter"
)

type queryRule struct {
	contains string
	rows     []adapter.Row
	err      error
}

// Executor records every call. Queries are answered by the first rule whose
// substring the query contains; unmatched queries return no rows.
type Executor struct {
	// Log holds statements and transaction events ("BEGIN", "COMMIT",
	// "ROLLBACK") in call order.
	Log        []string
	Statements []string
	Queries    []string

	Closed bool

	rules     []queryRule
	execRules []queryRule
	inTx      bool
}

func New() *Executor {
	return &Executor{}
}

func (e *Executor) OnQuery(contains string, rows ...adapter.Row) *Executor {
	e.rules = append(e.rules, queryRule{contains: contains, rows: rows})
	return e
}

func (e *Executor) FailQuery(contains string, err error) *Executor {
	e.rules = append(e.rules, queryRule{contains: contains, err: err})
	return e
}

func (e *Executor) FailExecute(contains string, err error) *Executor {
	e.execRules = append(e.execRules, queryRule{contains: contains, err: err})
	return e
}

// Reset forgets the recorded calls but keeps the rules.
func (e *Executor) Reset() {
	e.Log = nil
	e.Statements = nil
	e.Queries = nil
}

func (e *Executor) Execute(_ context.Context, query string, _ ...any) (int64, error) {
	e.Log = append(e.Log, query)
	e.Statements = append(e.Statements, query)

	for _, rule := range e.execRules {
		if strings.Contains(query, rule.contains) {
			return 0, rule.err
		}
	}
	return 1, nil
}

func (e *Executor) Query(_ context.Context, query string, _ ...any) ([]adapter.Row, error) {
	e.Queries = append(e.Queries, query)

	for _, rule := range e.rules {
		if strings.Contains(query, rule.contains) {
			if rule.err != nil {
				return nil, rule.err
			}
			return rule.rows, nil
		}
	}
	return []adapter.Row{}, nil
}

func (e *Executor) Begin(context.Context) error {
	e.Log = append(e.Log, "BEGIN")
	e.inTx = true
	return nil
}

func (e *Executor) Commit() error {
	e.Log = append(e.Log, "COMMIT")
	if !e.inTx {
		return adapter.ErrNoTransaction
	}
	e.inTx = false
	return nil
}

func (e *Executor) Rollback() error {
	e.Log = append(e.Log, "ROLLBACK")
	if !e.inTx {
		return adapter.ErrNoTransaction
	}
	e.inTx = false
	return nil
}

func (e *Executor) Close() error {
	e.Closed = true
	return nil
}

// InTransaction reports whether a transaction is open.
func (e *Executor) InTransaction() bool {
	return e.inTx
}

var _ adapter.Executor = (*Executor)(nil)
