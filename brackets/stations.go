package brackets

import "sync"

// StationPool tracks which putting stations are occupied. Stations are
// identified 1..size; Acquire always hands out the lowest free id so walk-up
// players gravitate to the same end of the room.
type StationPool struct {
	mu    sync.Mutex
	inUse []bool
}

func NewStationPool(size int) *StationPool {
	return &StationPool{inUse: make([]bool, size)}
}

func (p *StationPool) Size() int {
	return len(p.inUse)
}

// Acquire reserves the lowest free station and returns its id.
func (p *StationPool) Acquire() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, used := range p.inUse {
		if !used {
			p.inUse[i] = true
			return i + 1, nil
		}
	}
	return 0, ErrNoStationAvailable
}

// MarkInUse claims a specific station, used to rebuild pool occupancy from
// persisted match state. Out-of-range ids are ignored.
func (p *StationPool) MarkInUse(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id >= 1 && id <= len(p.inUse) {
		p.inUse[id-1] = true
	}
}

// Release frees a station. Releasing a free or out-of-range id is a no-op.
func (p *StationPool) Release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id >= 1 && id <= len(p.inUse) {
		p.inUse[id-1] = false
	}
}

// Reset frees every station.
func (p *StationPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.inUse {
		p.inUse[i] = false
	}
}
