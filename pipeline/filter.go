package pipeline

// A NodeKind represents the different kinds of nodes.
type NodeKind int

const (
	// Ordered nodes receive batches in encounter order.
	Ordered NodeKind = iota

	// Parallel nodes receive batches in parallel.
	Parallel
)

/*
A Filter is a function that returns a Receiver and a Finalizer to be
added to a node. It receives the pipeline and the kind of node it will
be added to.

Either the receiver or the finalizer or both can be nil, in which case
they will not be added to the current node.
*/
type Filter func(pipeline *Pipeline, kind NodeKind) (Receiver, Finalizer)

// A Receiver is called for every data batch, and returns a
// potentially modified data batch. The seqNo parameter indicates the
// order in which the data batch was encountered at the source.
type Receiver func(seqNo int, data interface{}) (filteredData interface{})

// A Finalizer is called once after the corresponding receiver has
// been called for all data batches in the current pipeline.
type Finalizer func()

// Receive creates a Filter that returns the given receiver and a nil
// finalizer.
func Receive(receive Receiver) Filter {
	return func(*Pipeline, NodeKind) (Receiver, Finalizer) {
		return receive, nil
	}
}

// Finalize creates a Filter that returns a nil receiver and the given
// finalizer.
func Finalize(finalize Finalizer) Filter {
	return func(*Pipeline, NodeKind) (Receiver, Finalizer) {
		return nil, finalize
	}
}

func composeFilters(pipeline *Pipeline, kind NodeKind, filters []Filter) (receivers []Receiver, finalizers []Finalizer) {
	for _, filter := range filters {
		receiver, finalizer := filter(pipeline, kind)
		if receiver != nil {
			receivers = append(receivers, receiver)
		}
		if finalizer != nil {
			finalizers = append(finalizers, finalizer)
		}
	}
	return
}

func feed(p *Pipeline, receivers []Receiver, index int, seqNo int, data interface{}) {
	for _, receive := range receivers {
		data = receive(seqNo, data)
	}
	p.FeedForward(index, seqNo, data)
}
