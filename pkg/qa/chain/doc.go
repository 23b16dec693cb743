// Package chain provides a fluent, short-circuiting way to build an
// automator pipeline from an ordered list of steps.
//
// Every step is wrapped in a per-item "maybe": items the nothing check
// accepts (nil, zero values and empty containers by default) skip the step
// and travel on unchanged, or are replaced by the step's default value.
// Nothing ever stops the pipeline early; the check is made item by item.
//
//	res, err := chain.New().
//		Insert(0, 5, 0, 7).
//		Then(double).
//		Maybe(ctx, nil, chain.Default(-1))
//
// Steps without an explicit worker count share the available CPUs evenly.
// Maybe runs the pipeline and resets the chain, so the same value can build
// another one afterwards. A Chain is not safe for concurrent use.
package chain
