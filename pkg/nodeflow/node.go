package nodeflow

// Service is the work a node performs. Implementations read the current
// state with store.State() and write with store.Update, store.Merge, or
// store.Set. A service must not retain the store beyond the call.
//
// Failures are reported by returning an error; the engine wraps it in a
// *ServiceError and aborts the run.
type Service[S any] interface {
	Service(ctx Context, store *Store[S]) error
}

// ServiceFunc adapts an ordinary function to Service.
type ServiceFunc[S any] func(ctx Context, store *Store[S]) error

// Service calls f.
func (f ServiceFunc[S]) Service(ctx Context, store *Store[S]) error {
	return f(ctx, store)
}

// Node is the atomic unit of work. It has a stable identity generated at
// construction and holds no state between executions.
type Node[S any] struct {
	id      string
	name    string
	service Service[S]
}

// Compile-time interface check.
var _ Unit[struct{}] = (*Node[struct{}])(nil)

// NewNode wraps a service as a graph node. The name defaults to the
// service's type name (the function name for a ServiceFunc).
//
// Panics if svc is nil. This indicates a programming error.
func NewNode[S any](svc Service[S], opts ...UnitOption) *Node[S] {
	if svc == nil {
		panic("nodeflow: node service cannot be nil")
	}
	cfg := applyUnitOptions(typeName(svc), opts)
	return &Node[S]{
		id:      newUnitID(),
		name:    cfg.name,
		service: svc,
	}
}

// Func creates a named node from a function.
//
//	increment := nodeflow.Func("increment", func(ctx nodeflow.Context, s *nodeflow.Store[State]) error {
//	    return s.Update(ctx, func(st State) (State, error) {
//	        st.Count++
//	        return st, nil
//	    })
//	})
func Func[S any](name string, fn func(ctx Context, store *Store[S]) error) *Node[S] {
	if fn == nil {
		panic("nodeflow: node function cannot be nil")
	}
	return NewNode[S](ServiceFunc[S](fn), WithName(name))
}

// ID returns the node identity.
func (n *Node[S]) ID() string { return n.id }

// Name returns the node name.
func (n *Node[S]) Name() string { return n.name }

// Kind returns KindNode.
func (n *Node[S]) Kind() UnitKind { return KindNode }

// Execute runs the service against store.
func (n *Node[S]) Execute(ctx Context, store *Store[S]) error {
	if err := n.service.Service(ctx, store); err != nil {
		return &ServiceError{UnitID: n.id, UnitName: n.name, Err: err}
	}
	return nil
}

// String returns the node name.
func (n *Node[S]) String() string { return n.name }
