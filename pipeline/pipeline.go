/*
Package pipeline provides means to construct and execute parallel
pipelines over slices.

A Pipeline splits a source slice into batches, and feeds them through
a sequence of nodes. Parallel nodes process batches concurrently;
ordered nodes receive them one at a time, in the order the batches
appear in the source, even when they are preceded by parallel nodes.
This makes it possible to parallelize an expensive transformation
while still consuming its results in order, for example to feed them
into a streaming hash.

Nodes consist of filters, which are pairs of receiver and finalizer
functions. Each batch is passed to each receiver function, which can
transform the batch for the next receiver function in the pipeline.
Each finalizer function is called once when all batches have been
passed through all receiver functions.

Pipelines support cancelation by way of the context package of Go's
standard library.
*/
package pipeline

import (
	"context"
	"runtime"
)

/*
A Node represents a sequence of filters which are together executed
either in encounter order or in parallel.

The methods of this interface are called by pipelines. User programs
create nodes with Par and Ord.
*/
type Node interface {
	// TryMerge tries to merge node with the current node by appending
	// its filters to the filters of the current node, which succeeds
	// if both nodes are of the same kind.
	TryMerge(node Node) (merged bool)

	// Begin informs this node that the pipeline is going to start to
	// feed batches of data to this node. It returns false if the node
	// has no filters, in which case it is removed from the pipeline.
	Begin(p *Pipeline, index int) (keep bool)

	// Feed is called for each batch of data, with the index of this
	// node in the pipeline and the sequence number of the batch. The
	// node must eventually call p.FeedForward with the same index and
	// sequence number.
	Feed(p *Pipeline, index int, seqNo int, data interface{})

	// End is called after all batches have been passed to Feed.
	End()
}

/*
A Pipeline is a parallel pipeline that feeds batches of data fetched
from a source through several nodes.

The zero Pipeline is valid and empty.

A Pipeline must not be copied after first use.
*/
type Pipeline struct {
	ctx        context.Context
	cancel     context.CancelFunc
	source     Source
	nodes      []Node
	nofBatches int
}

// Source sets the data source for this pipeline.
func (p *Pipeline) Source(source Source) {
	p.source = source
}

// Add appends nodes to the end of this pipeline.
func (p *Pipeline) Add(nodes ...Node) {
	for _, node := range nodes {
		if l := len(p.nodes); (l == 0) || !p.nodes[l-1].TryMerge(node) {
			p.nodes = append(p.nodes, node)
		}
	}
}

/*
NofBatches sets or gets the number of batches that are created from
the data source for this pipeline.

If user programs do not call NofBatches, or call it with a value < 1,
then the pipeline chooses a default value that takes
runtime.GOMAXPROCS(0) into account.
*/
func (p *Pipeline) NofBatches(n int) (nofBatches int) {
	if n < 1 {
		nofBatches = p.nofBatches
		if nofBatches < 1 {
			nofBatches = 2 * runtime.GOMAXPROCS(0)
			p.nofBatches = nofBatches
		}
	} else {
		nofBatches = n
		p.nofBatches = n
	}
	return
}

/*
RunWithContext initiates pipeline execution, and returns when all
nodes have finished, or the context is canceled. It returns the error
of the context if it was canceled, and nil otherwise.

The cancel function must cancel ctx. RunWithContext does not ensure
that it is called, so this must be ensured by the caller.
*/
func (p *Pipeline) RunWithContext(ctx context.Context, cancel context.CancelFunc) error {
	p.ctx, p.cancel = ctx, cancel
	dataSize := p.source.Prepare(p.ctx)
	for index := 0; index < len(p.nodes); {
		if p.nodes[index].Begin(p, index) {
			index++
		} else {
			p.nodes = append(p.nodes[:index], p.nodes[index+1:]...)
		}
	}
	if len(p.nodes) > 0 {
		batchSize := ((dataSize - 1) / p.NofBatches(0)) + 1
		if batchSize < 1 {
			batchSize = 1
		}
		for seqNo := 0; p.source.Fetch(batchSize) > 0; seqNo++ {
			if p.ctx.Err() != nil {
				break
			}
			p.nodes[0].Feed(p, 0, seqNo, p.source.Data())
		}
	}
	for _, node := range p.nodes {
		node.End()
	}
	return p.ctx.Err()
}

// Run initiates pipeline execution with a background context, see
// RunWithContext.
func (p *Pipeline) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return p.RunWithContext(ctx, cancel)
}

/*
FeedForward must be called in the Feed method of a node to forward a
potentially modified data batch to the next node in the current
pipeline, with the index and seqNo received by Feed. It must be called
even if the data batch is unmodified or empty.
*/
func (p *Pipeline) FeedForward(index int, seqNo int, data interface{}) {
	if index++; index < len(p.nodes) {
		p.nodes[index].Feed(p, index, seqNo, data)
	}
}
