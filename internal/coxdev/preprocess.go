package coxdev

import "sort"

// IndexBundle is the permutation and index bundle produced once per
// dataset by Preprocess and held read-only for the life of a fit. All
// fields are in event order except StartOrder, which is the native
// index of each subject in start-time-ascending order.
//
// EventMap and StartMap resolve an ambiguity in how the underlying
// counting-process algorithm composes prefix sums across the two
// permutations (see DESIGN.md, Open Question decisions, "EventMap/StartMap
// ordering"):
// both are carried in EVENT order here so that every per-event kernel
// loop (SumOverRiskSet, CoxDev) can index them directly alongside
// First/Last/Scaling, with no further permutation needed.
type IndexBundle struct {
	EventOrder []int
	StartOrder []int // empty iff the dataset has no start times

	Start []float64 // event-ordered copy of the raw start times; empty iff no start times
	Event []float64 // event-ordered copy of the raw event times
	Status []float64

	First   []int
	Last    []int
	Scaling []float64

	// EventMap[k] is the number of start times that precede
	// event_order[k]'s stop time in the combined (start, stop]
	// sort order; consumed by SumOverRiskSet against the start-order
	// reverse cumsum.
	EventMap []int
	// StartMap[k] is the number of event (stop) times at or before
	// event_order[k]'s own start time; consumed by CoxDev to truncate
	// the forward event cumsums at a subject's entry point.
	StartMap []int
}

// HaveStartTimes reports whether this bundle was built from
// counting-process (start, event] data, as opposed to right-censored
// event-only data.
func (b *IndexBundle) HaveStartTimes() bool {
	return len(b.StartOrder) > 0
}

// Preprocess builds the index bundle from raw (start, event, status)
// triples. start may be a zero-length slice, by convention, for a
// right-censored-only dataset; in that case StartOrder, EventMap and
// StartMap come back empty.
//
// The sort key realising the (start, stop] interval convention is
// (time ascending, complemented-status ascending, is-start ascending):
// at a tied time, failures sort before censorings, and both sort
// before a newly entering subject's start row, so a subject entering
// exactly at an event's time is excluded from that event's risk set.
func Preprocess(start, event, status []float64) (*IndexBundle, error) {
	n := len(event)
	if len(status) != n {
		return nil, &ErrShapeMismatch{Op: "Preprocess", Field: "status", Got: len(status), Expected: n}
	}
	haveStart := len(start) > 0
	if haveStart && len(start) != n {
		return nil, &ErrShapeMismatch{Op: "Preprocess", Field: "start", Got: len(start), Expected: n}
	}

	type row struct {
		time    float64
		compl   int // complemented status: 0 for a failure row, 1 for a censoring or start row
		isStart int
		idx     int
	}

	var rows []row
	for i := 0; i < n; i++ {
		compl := 0
		if status[i] == 0 {
			compl = 1
		}
		rows = append(rows, row{time: event[i], compl: compl, isStart: 0, idx: i})
	}
	if haveStart {
		for i := 0; i < n; i++ {
			rows = append(rows, row{time: start[i], compl: 1, isStart: 1, idx: i})
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := rows[order[a]], rows[order[b]]
		if ra.time != rb.time {
			return ra.time < rb.time
		}
		if ra.compl != rb.compl {
			return ra.compl < rb.compl
		}
		return ra.isStart < rb.isStart
	})

	eventOrder := make([]int, 0, n)
	startOrder := make([]int, 0, n)
	first := make([]int, 0, n)
	eventMap := make([]int, 0, n)     // lockstep with event rows
	startMapByStart := make([]int, 0, n) // lockstep with start rows, indexed by start-sort position

	eventCount, startCount := 0, 0
	firstEvent, tieAccum := 0, 0
	havePrevEventTime := false
	var prevEventTime float64

	for _, oi := range order {
		r := rows[oi]
		if r.isStart == 1 {
			startOrder = append(startOrder, r.idx)
			startMapByStart = append(startMapByStart, eventCount)
			startCount++
			continue
		}
		// event / stop row
		isFailure := r.compl == 0
		if isFailure {
			if havePrevEventTime && r.time == prevEventTime {
				tieAccum++
			} else {
				firstEvent += tieAccum
				tieAccum = 1
			}
			first = append(first, firstEvent)
		} else {
			firstEvent += tieAccum
			first = append(first, firstEvent)
			firstEvent++
			tieAccum = 0
		}
		if haveStart {
			eventMap = append(eventMap, startCount)
		}
		eventOrder = append(eventOrder, r.idx)
		eventCount++
		prevEventTime = r.time
		havePrevEventTime = true
	}

	// Remap startMapByStart (indexed by start-sort position) into
	// native order, then gather into event order.
	var startMap []int
	if haveStart {
		startMapNative := make([]int, n)
		for i, nativeIdx := range startOrder {
			startMapNative[nativeIdx] = startMapByStart[i]
		}
		startMap = make([]int, n)
		for k, nativeIdx := range eventOrder {
			startMap[k] = startMapNative[nativeIdx]
		}
	}

	// last: walk first from the tail forward.
	last := make([]int, n)
	lastEvent := n - 1
	for i := 0; i < n; i++ {
		pos := n - 1 - i
		last[pos] = lastEvent
		if first[pos]-pos == 0 {
			lastEvent = first[pos] - 1
		}
	}

	scaling := make([]float64, n)
	for k := 0; k < n; k++ {
		fi := float64(first[k])
		scaling[k] = (float64(k) - fi) / (float64(last[k]) + 1.0 - fi)
	}

	eventStatus := make([]float64, n)
	eventEvent := make([]float64, n)
	var eventStart []float64
	for k, nativeIdx := range eventOrder {
		eventStatus[k] = status[nativeIdx]
		eventEvent[k] = event[nativeIdx]
	}
	if haveStart {
		eventStart = make([]float64, n)
		for k, nativeIdx := range eventOrder {
			eventStart[k] = start[nativeIdx]
		}
	}

	return &IndexBundle{
		EventOrder: eventOrder,
		StartOrder: startOrder,
		Start:      eventStart,
		Event:      eventEvent,
		Status:     eventStatus,
		First:      first,
		Last:       last,
		Scaling:    scaling,
		EventMap:   eventMap,
		StartMap:   startMap,
	}, nil
}
