package chain

import "github.com/ib-77/queueautomator/pkg/qa/automator"

// Wrapper applies fn to an item unless nothing reports it as empty.
type Wrapper struct {
	fn         automator.WorkerFunc
	nothing    func(any) bool
	def        any
	hasDefault bool
}

func NewWrapper(fn automator.WorkerFunc, nothing func(any) bool) Wrapper {
	return Wrapper{fn: fn, nothing: nothing}
}

// WithDefault replaces nothing items with def. A nil def keeps them as they
// are.
func (w Wrapper) WithDefault(def any) Wrapper {
	w.def = def
	w.hasDefault = def != nil
	return w
}

func (w Wrapper) Maybe(item any) any {
	if w.nothing(item) {
		if w.hasDefault {
			return w.def
		}
		return item
	}
	return w.fn(item)
}

func identity(item any) any {
	return item
}
