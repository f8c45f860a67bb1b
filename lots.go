package fiscal

// Lot is the part of a buy operation not yet consumed by sells.
type Lot struct {
	Buy       *Operation
	Remaining Quantity
}

// lotQueue is the FIFO of open lots of one instrument.
// Lots before head are fully consumed.
type lotQueue struct {
	lots []*Lot
	head int
}

func (q *lotQueue) push(l *Lot) { q.lots = append(q.lots, l) }

func (q *lotQueue) empty() bool { return q.head >= len(q.lots) }

// front returns the oldest open lot, or nil.
func (q *lotQueue) front() *Lot {
	if q.empty() {
		return nil
	}
	return q.lots[q.head]
}

func (q *lotQueue) pop() {
	q.lots[q.head] = nil
	q.head++
	if q.head == len(q.lots) {
		q.lots, q.head = q.lots[:0], 0
	}
}

// open returns the open lots in acquisition order.
func (q *lotQueue) open() []*Lot { return q.lots[q.head:] }

// inventory holds the open lots of all instruments, and tracks how much of
// every buy has been consumed by sells.
type inventory struct {
	queues   map[string]*lotQueue
	consumed map[int]Quantity // by operation seq
}

func newInventory() *inventory {
	return &inventory{
		queues:   make(map[string]*lotQueue),
		consumed: make(map[int]Quantity),
	}
}

func (inv *inventory) queue(instrument string) *lotQueue {
	q, ok := inv.queues[instrument]
	if !ok {
		q = &lotQueue{}
		inv.queues[instrument] = q
	}
	return q
}

// open creates a lot for the buy operation.
func (inv *inventory) open(buy *Operation) *Lot {
	l := &Lot{Buy: buy, Remaining: buy.Quantity}
	inv.queue(buy.Instrument).push(l)
	return l
}

// take consumes up to want units from the oldest lot of instrument. It
// returns the lot and the quantity taken, or nil if there is no open lot.
func (inv *inventory) take(instrument string, want Quantity) (*Lot, Quantity) {
	q := inv.queue(instrument)
	l := q.front()
	if l == nil {
		return nil, Quantity{}
	}
	n := want.Min(l.Remaining)
	l.Remaining = l.Remaining.Sub(n)
	inv.consumed[l.Buy.seq] = inv.consumed[l.Buy.seq].Add(n)
	if l.Remaining.IsZero() {
		q.pop()
	}
	return l, n
}

// Consumed returns the quantity of the buy operation consumed by sells so far.
func (inv *inventory) Consumed(buy *Operation) Quantity { return inv.consumed[buy.seq] }

// Open returns the open lots of instrument.
func (inv *inventory) Open(instrument string) []*Lot {
	q, ok := inv.queues[instrument]
	if !ok {
		return nil
	}
	return q.open()
}
