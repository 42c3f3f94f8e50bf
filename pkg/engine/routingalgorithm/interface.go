package routingalgorithm

import "github.com/lintang-b-s/navigatorx-table/pkg/datastructure"

// ManyToManyRouter computes the cost of every source/target pair over one
// loaded index. Unreached pairs stay +Inf in the returned table.
type ManyToManyRouter interface {
	ManyToMany(sources, targets []datastructure.PhantomNode) *datastructure.CostTable
	Algorithm() datastructure.Algorithm
}

var (
	_ ManyToManyRouter = (*CHManyToMany)(nil)
	_ ManyToManyRouter = (*MLDManyToMany)(nil)
)
