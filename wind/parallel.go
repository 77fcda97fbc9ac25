package wind

import (
	"runtime"
	"sync"
)

// minBandRows keeps bands large enough that dispatch overhead stays small.
const minBandRows = 8

// band is a contiguous range of rows [y0, y1).
type band struct {
	y0, y1 int
}

// bandPool runs row bands of one step on persistent workers. run blocks
// until every band has finished, so no step ever overlaps the next.
type bandPool struct {
	fn         func(y0, y1 int)
	numWorkers int

	workChan chan band
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func newBandPool(fn func(y0, y1 int)) *bandPool {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	p := &bandPool{
		fn:         fn,
		numWorkers: n,
		workChan:   make(chan band, n),
		doneChan:   make(chan struct{}, n),
		stopChan:   make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *bandPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case b := <-p.workChan:
			p.fn(b.y0, b.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits rows into bands, dispatches them and waits for completion.
func (p *bandPool) run(rows int) {
	chunk := (rows + p.numWorkers - 1) / p.numWorkers
	if chunk < minBandRows {
		chunk = minBandRows
	}

	pending := 0
	for y := 0; y < rows; y += chunk {
		end := y + chunk
		if end > rows {
			end = rows
		}
		p.workChan <- band{y0: y, y1: end}
		pending++
		// Drain early so the buffered channels never block the sender
		if pending == p.numWorkers {
			for ; pending > 0; pending-- {
				<-p.doneChan
			}
		}
	}
	for ; pending > 0; pending-- {
		<-p.doneChan
	}
}

// stop signals all workers to exit and waits for them.
func (p *bandPool) stop() {
	close(p.stopChan)
	p.wg.Wait()
}
