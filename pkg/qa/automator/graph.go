package automator

import (
	"fmt"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/queue"
)

// edge is a snapshot of a stage taken when the graph is built, so later
// registry changes never reach a running pipeline.
type edge struct {
	from    string
	to      string
	workers int
	fn      WorkerFunc
}

type graph struct {
	// edges in traversal order, which is both spawn and shutdown order
	edges    []edge
	visited  map[string]struct{}
	queues   map[string]*queue.Joinable[qa.Message]
	terminal *queue.Simple[qa.Message]
}

// buildGraph walks from entry to Output and creates one queue per stage.
// Reaching a stage twice means the chain loops back on itself.
func buildGraph(stages map[string]*stage, entry string) (*graph, error) {
	g := &graph{
		visited: map[string]struct{}{},
		queues:  map[string]*queue.Joinable[qa.Message]{},
	}

	name := entry
	for name != Output {
		st, found := stages[name]
		if !found {
			return nil, fmt.Errorf("%w: %q, register a worker function for it", qa.ErrUnknownStage, name)
		}

		if _, seen := g.visited[name]; seen {
			return nil, fmt.Errorf("%w: %q", qa.ErrCycle, name)
		}
		g.visited[name] = struct{}{}

		g.queues[name] = queue.NewJoinable[qa.Message]()
		g.edges = append(g.edges, edge{
			from:    name,
			to:      st.successor,
			workers: st.workers,
			fn:      st.fn,
		})
		name = st.successor
	}

	g.terminal = queue.NewSimple[qa.Message]()
	return g, nil
}

func (g *graph) sink(name string) queue.Sink[qa.Message] {
	if name == Output {
		return g.terminal
	}
	return g.queues[name]
}
