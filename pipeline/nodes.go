package pipeline

import (
	"sync"

	"github.com/exascience/parsort/internal"
)

type parnode struct {
	waitGroup  sync.WaitGroup
	panicOnce  sync.Once
	panicValue interface{}
	filters    []Filter
	receivers  []Receiver
	finalizers []Finalizer
}

// Par creates a parallel node with the given filters.
func Par(filters ...Filter) Node {
	return &parnode{filters: filters}
}

// TryMerge implements the method of the Node interface.
func (node *parnode) TryMerge(next Node) bool {
	if nxt, merge := next.(*parnode); merge {
		node.filters = append(node.filters, nxt.filters...)
		return true
	}
	return false
}

// Begin implements the method of the Node interface.
func (node *parnode) Begin(p *Pipeline, _ int) (keep bool) {
	node.receivers, node.finalizers = composeFilters(p, Parallel, node.filters)
	node.filters = nil
	return (len(node.receivers) > 0) || (len(node.finalizers) > 0)
}

// Feed implements the method of the Node interface. A panic in a
// receiver cancels the pipeline, and is re-raised by End.
func (node *parnode) Feed(p *Pipeline, index int, seqNo int, data interface{}) {
	node.waitGroup.Add(1)
	go func() {
		defer node.waitGroup.Done()
		defer func() {
			if r := recover(); r != nil {
				node.panicOnce.Do(func() { node.panicValue = internal.WrapPanic(r) })
				p.cancel()
			}
		}()
		if p.ctx.Err() != nil {
			return
		}
		feed(p, node.receivers, index, seqNo, data)
	}()
}

// End implements the method of the Node interface.
func (node *parnode) End() {
	node.waitGroup.Wait()
	if node.panicValue != nil {
		panic(node.panicValue)
	}
	for _, finalize := range node.finalizers {
		finalize()
	}
	node.receivers = nil
	node.finalizers = nil
}

type dataBatch struct {
	seqNo int
	data  interface{}
}

type ordnode struct {
	cond       *sync.Cond
	channel    chan dataBatch
	waitGroup  sync.WaitGroup
	next       int
	filters    []Filter
	receivers  []Receiver
	finalizers []Finalizer
}

// Ord creates an ordered node with the given filters. Its receivers see
// batches strictly in encounter order, one at a time.
func Ord(filters ...Filter) Node {
	return &ordnode{filters: filters}
}

// TryMerge implements the method of the Node interface.
func (node *ordnode) TryMerge(next Node) bool {
	if nxt, merge := next.(*ordnode); merge {
		node.filters = append(node.filters, nxt.filters...)
		return true
	}
	return false
}

// Begin implements the method of the Node interface.
func (node *ordnode) Begin(p *Pipeline, index int) (keep bool) {
	node.receivers, node.finalizers = composeFilters(p, Ordered, node.filters)
	node.filters = nil
	if keep = (len(node.receivers) > 0) || (len(node.finalizers) > 0); !keep {
		return
	}
	node.cond = sync.NewCond(&sync.Mutex{})
	node.channel = make(chan dataBatch)
	node.waitGroup.Add(1)
	go func() {
		defer node.waitGroup.Done()
		for {
			select {
			case <-p.ctx.Done():
				node.cond.L.Lock()
				node.cond.Broadcast()
				node.cond.L.Unlock()
				return
			case batch, ok := <-node.channel:
				if !ok {
					return
				}
				node.cond.L.Lock()
				if batch.seqNo != node.next {
					panic("pipeline: invalid receive order in an ordered node")
				}
				node.next++
				node.cond.L.Unlock()
				node.cond.Broadcast()
				feed(p, node.receivers, index, batch.seqNo, batch.data)
			}
		}
	}()
	return
}

// Feed implements the method of the Node interface. It blocks until all
// batches with smaller sequence numbers have been received.
func (node *ordnode) Feed(p *Pipeline, _ int, seqNo int, data interface{}) {
	node.cond.L.Lock()
	defer node.cond.L.Unlock()
	for {
		if node.next == seqNo {
			select {
			case <-p.ctx.Done():
				return
			case node.channel <- dataBatch{seqNo, data}:
				return
			}
		}
		if p.ctx.Err() != nil {
			return
		}
		node.cond.Wait()
	}
}

// End implements the method of the Node interface.
func (node *ordnode) End() {
	close(node.channel)
	node.waitGroup.Wait()
	for _, finalize := range node.finalizers {
		finalize()
	}
	node.receivers = nil
	node.finalizers = nil
}
