// Package proxy is the recording wrapper, registered as "proxy". Structural
// calls are recorded instead of executed, and the recording can be turned
// into the action list that undoes it.
package proxy

import (
	"context"
	"fmt"

	"github.com/root-talis/kaizou/adapter"
	"github.com/root-talis/kaizou/schema"
)

const Name = "proxy"

func init() {
	adapter.MustRegisterWrapper(Name, func(inner adapter.Adapter) (adapter.Adapter, error) {
		return New(inner), nil
	})
}

// Adapter forwards reads to the inner adapter and records CreateTable and
// ExecuteActions. Data inserts are dropped.
type Adapter struct {
	*adapter.Wrapper
	actions []schema.Action
}

func New(inner adapter.Adapter) *Adapter {
	return &Adapter{Wrapper: adapter.NewWrapper(inner)}
}

// CreateTable records the table creation followed by one AddColumn per column
// and one AddIndex per index, in the order a table builder would emit them.
func (p *Adapter) CreateTable(_ context.Context, table *schema.Table, columns []*schema.Column, indexes []*schema.Index) error {
	p.actions = append(p.actions, schema.NewCreateTable(table))
	for _, c := range columns {
		p.actions = append(p.actions, schema.NewAddColumn(table, c))
	}
	for _, idx := range indexes {
		p.actions = append(p.actions, schema.NewAddIndex(table, idx))
	}
	return nil
}

func (p *Adapter) ExecuteActions(_ context.Context, _ *schema.Table, actions []schema.Action) error {
	p.actions = append(p.actions, actions...)
	return nil
}

func (p *Adapter) Insert(context.Context, *schema.Table, adapter.Row) error {
	return nil
}

func (p *Adapter) BulkInsert(context.Context, *schema.Table, []adapter.Row) error {
	return nil
}

// Actions returns the recorded actions in call order.
func (p *Adapter) Actions() []schema.Action {
	return append([]schema.Action(nil), p.actions...)
}

func (p *Adapter) Reset() {
	p.actions = nil
}

// InvertedActions undoes the recording; see Invert.
func (p *Adapter) InvertedActions() ([]schema.Action, error) {
	return Invert(p.actions)
}

// ---

// Invert walks actions backwards and maps each one to its inverse. When any
// action has no inverse the whole inversion fails and nothing is returned.
func Invert(actions []schema.Action) ([]schema.Action, error) {
	inverted := make([]schema.Action, 0, len(actions))

	for i := len(actions) - 1; i >= 0; i-- {
		inverse, err := invert(actions[i])
		if err != nil {
			return nil, err
		}
		inverted = append(inverted, inverse)
	}

	return inverted, nil
}

func invert(action schema.Action) (schema.Action, error) {
	switch a := action.(type) {
	case *schema.CreateTable:
		return schema.NewDropTable(a.Table()), nil

	case *schema.RenameTable:
		return schema.NewRenameTable(a.Table().Renamed(a.NewName()), a.TableName()), nil

	case *schema.AddColumn:
		return schema.NewRemoveColumn(a.Table(), a.Column()), nil

	case *schema.RenameColumn:
		renamed := a.Column()
		oldName := renamed.Name
		renamed.Name = a.NewName()
		return schema.NewRenameColumn(a.Table(), renamed, oldName), nil

	case *schema.AddIndex:
		return schema.NewDropIndex(a.Table(), a.Index()), nil

	case *schema.AddForeignKey:
		fk := a.ForeignKey()
		return schema.NewDropForeignKey(a.Table(), fk.Columns, fk.Constraint), nil

	case nil:
		return nil, fmt.Errorf("%w: nil action", adapter.ErrInvalidConfiguration)

	default:
		return nil, &adapter.IrreversibleMigrationError{Action: action.Kind()}
	}
}

var _ adapter.Adapter = (*Adapter)(nil)
