package table

import (
	"context"
	"fmt"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

// phase is one pass over the tables of a plan. Phases run in declaration
// order and every phase issues one ExecuteActions call per table.
type phase int

const (
	phaseColumnUpdates phase = iota
	phaseConstraints
	phaseIndexes
	phaseColumnRemovals
	phaseTableMoves

	phaseCount
)

type creation struct {
	table   *schema.Table
	columns []*schema.Column
	indexes []*schema.Index
}

// batch holds the actions of one phase grouped by table, tables in order of
// first appearance.
type batch struct {
	names   []string
	tables  map[string]*schema.Table
	actions map[string][]schema.Action
}

func newBatch() *batch {
	return &batch{tables: map[string]*schema.Table{}, actions: map[string][]schema.Action{}}
}

func (b *batch) add(action schema.Action) {
	name := action.Table().Name
	if _, ok := b.tables[name]; !ok {
		b.names = append(b.names, name)
		b.tables[name] = action.Table()
	}
	b.actions[name] = append(b.actions[name], action)
}

func (b *batch) forget(name string) {
	if _, ok := b.tables[name]; !ok {
		return
	}
	delete(b.tables, name)
	delete(b.actions, name)

	names := b.names[:0]
	for _, n := range b.names {
		if n != name {
			names = append(names, n)
		}
	}
	b.names = names
}

// Plan orders a flushed action buffer into adapter calls: table creations
// first, then column updates, constraints, indexes, column removals and
// finally renames and drops. Alterations of a table that a rename in the
// same plan produces run once more through the alteration phases, after the
// renames.
type Plan struct {
	creations []*creation
	phases    [phaseCount]*batch
	renamed   [phaseTableMoves]*batch
}

func NewPlan(actions []schema.Action) *Plan {
	p := &Plan{}
	for i := range p.phases {
		p.phases[i] = newBatch()
	}
	for i := range p.renamed {
		p.renamed[i] = newBatch()
	}

	created := map[string]*creation{}
	produced := map[string]bool{}

	for _, action := range actions {
		name := action.Table().Name

		switch a := action.(type) {
		case *schema.CreateTable:
			c := &creation{table: a.Table()}
			p.creations = append(p.creations, c)
			created[name] = c
			continue
		case *schema.AddColumn:
			if c, ok := created[name]; ok {
				c.columns = append(c.columns, a.Column())
				continue
			}
		case *schema.AddIndex:
			if c, ok := created[name]; ok {
				c.indexes = append(c.indexes, a.Index())
				continue
			}
		}

		ph := phaseOf(action)
		switch {
		case ph == phaseTableMoves:
			if a, ok := action.(*schema.RenameTable); ok {
				delete(produced, name)
				produced[a.NewName()] = true
			}
			p.phases[ph].add(action)
		case produced[name]:
			p.renamed[ph].add(action)
		default:
			p.phases[ph].add(action)
		}
	}

	p.resolveConflicts()

	return p
}

func phaseOf(action schema.Action) phase {
	switch action.Kind() {
	case schema.KindAddForeignKey, schema.KindDropForeignKey:
		return phaseConstraints
	case schema.KindAddIndex, schema.KindDropIndex:
		return phaseIndexes
	case schema.KindRemoveColumn:
		return phaseColumnRemovals
	case schema.KindRenameTable, schema.KindDropTable:
		return phaseTableMoves
	default:
		return phaseColumnUpdates
	}
}

// resolveConflicts skips the alterations of tables that the plan drops
// anyway.
func (p *Plan) resolveConflicts() {
	moves := p.phases[phaseTableMoves]

	for _, name := range moves.names {
		for _, action := range moves.actions[name] {
			if action.Kind() != schema.KindDropTable {
				continue
			}
			for ph := phaseColumnUpdates; ph < phaseTableMoves; ph++ {
				p.phases[ph].forget(name)
				p.renamed[ph].forget(name)
			}
		}
	}
}

// Empty reports whether executing the plan would do nothing.
func (p *Plan) Empty() bool {
	if len(p.creations) > 0 {
		return false
	}
	for _, b := range p.batches() {
		if len(b.names) > 0 {
			return false
		}
	}
	return true
}

// Execute runs the plan against a. Each adapter call is transactional on its
// own; callers that need the whole plan to be atomic wrap it in a
// transaction.
func (p *Plan) Execute(ctx context.Context, a adapter.Adapter) error {
	for _, c := range p.creations {
		if err := a.CreateTable(ctx, c.table, c.columns, c.indexes); err != nil {
			return err
		}
	}

	for _, b := range p.batches() {
		for _, name := range b.names {
			if err := a.ExecuteActions(ctx, b.tables[name], b.actions[name]); err != nil {
				return fmt.Errorf("failed to update table %q: %w", name, err)
			}
		}
	}

	return nil
}

// batches lists every batch in execution order.
func (p *Plan) batches() []*batch {
	out := make([]*batch, 0, len(p.phases)+len(p.renamed))
	out = append(out, p.phases[:]...)
	return append(out, p.renamed[:]...)
}
