package scissors

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"livewire/internal/models"
	"livewire/pkg/bucketqueue"
)

// noParent marks pixels without a predecessor.
const noParent = -1

// searchState is everything one anchor's search owns. It is rebuilt from
// scratch on every SetPoint.
type searchState struct {
	anchor models.Point
	width  int

	// visited marks finalized pixels
	visited *bitset.BitSet

	// cost holds the best known cost per pixel, +Inf until discovered
	cost []float64

	// parent holds the predecessor pixel index, noParent for the anchor and
	// undiscovered pixels
	parent []int32

	queue *bucketqueue.Queue
}

func newSearchState(anchor models.Point, width, height, bits int) *searchState {
	n := width * height
	s := &searchState{
		anchor:  anchor,
		width:   width,
		visited: bitset.New(uint(n)),
		cost:    make([]float64, n),
		parent:  make([]int32, n),
	}
	for i := range s.cost {
		s.cost[i] = math.Inf(1)
		s.parent[i] = noParent
	}

	gran := float64(int(1) << bits)
	s.queue = bucketqueue.New(bits, n, func(item int) int {
		return int(math.Round(gran * s.cost[item]))
	})

	a := anchor.Index(width)
	s.cost[a] = 0
	s.queue.Push(a)
	return s
}

func (s *searchState) isVisited(idx int) bool {
	return s.visited.Test(uint(idx))
}

func (s *searchState) parentOf(p models.Point) (models.Point, bool) {
	idx := s.parent[p.Index(s.width)]
	if idx == noParent {
		return models.Point{}, false
	}
	return models.FromIndex(int(idx), s.width), true
}
