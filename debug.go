package ember

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	traverseTime  time.Duration
	sortTime      time.Duration
	submitTime    time.Duration
	commandCount  int
	batchCount    int
	drawCallCount int
}

// debugLog prints draw timing and draw-call stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.traverseTime + stats.sortTime + stats.submitTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[ember] traverse: %v | sort: %v | submit: %v | total: %v\n",
		stats.traverseTime, stats.sortTime, stats.submitTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[ember] commands: %d | batches: %d | draw calls: %d\n",
		stats.commandCount, stats.batchCount, stats.drawCallCount)
}

// debugLogUpdate prints update timing and particle churn to stderr.
func (s *Scene) debugLogUpdate(elapsed time.Duration) {
	var alive, spawned, recycled int
	collectEmitterStats(s.root, &alive, &spawned, &recycled)
	_, _ = fmt.Fprintf(os.Stderr,
		"[ember] update: %v | particles: %d | spawned: %d | recycled: %d\n",
		elapsed, alive, spawned, recycled)
}

// collectEmitterStats sums particle counters over the subtree, draining each
// emitter's per-frame spawn/recycle tallies.
func collectEmitterStats(n *Node, alive, spawned, recycled *int) {
	if n.Emitter != nil {
		*alive += n.Emitter.AliveCount()
		sp, rc := n.Emitter.takeFrameStats()
		*spawned += sp
		*recycled += rc
	}
	for _, child := range n.children {
		collectEmitterStats(child, alive, spawned, recycled)
	}
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called when Scene.debug or the node's scene is
// in debug mode. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("ember debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[ember] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[ember] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}

// countBatches counts contiguous groups of commands sharing the same batchKey.
func countBatches(commands []RenderCommand) int {
	if len(commands) == 0 {
		return 0
	}
	count := 1
	prev := commandBatchKey(&commands[0])
	for i := 1; i < len(commands); i++ {
		cur := commandBatchKey(&commands[i])
		if cur != prev {
			count++
			prev = cur
		}
	}
	return count
}

// countDrawCalls counts the draw calls the submit pass will issue: one per
// coalesced sprite run, one per (page, blend) particle run, one per tilemap
// chunk or direct-image sprite.
func countDrawCalls(commands []RenderCommand) int {
	count := 0
	inRun := false
	var key batchKey
	for i := range commands {
		cmd := &commands[i]
		switch {
		case cmd.Type == CommandSprite && cmd.directImage == nil:
			k := commandBatchKey(cmd)
			if !inRun || k != key {
				count++
				key = k
				inRun = true
			}
		case cmd.Type == CommandParticle:
			count += emitterDrawRuns(cmd.emitter, cmd.directImage != nil)
			inRun = false
		default:
			count++
			inRun = false
		}
	}
	return count
}

// emitterDrawRuns counts the (image, blend) runs an emitter's particle chain
// splits into. direct means the emitter's command carries a directImage, so
// only blend changes split runs. Zero regions draw as WhitePixel and split
// from atlas runs the same way the submit pass does.
func emitterDrawRuns(e *ParticleEmitter, direct bool) int {
	if e == nil || e.destroyed || e.arena.activeCount == 0 {
		return 0
	}
	runs := 0
	var page uint16
	var blend BlendMode
	var zero bool
	first := true
	for i := e.arena.activeFirst; i != noIndex; i = e.arena.at(i).next {
		p := e.arena.at(i)
		pz := !direct && (p.Region.Width == 0 || p.Region.Height == 0)
		samePage := direct || (pz == zero && (pz || p.Region.Page == page))
		if first || !samePage || p.Blend != blend {
			runs++
			page = p.Region.Page
			blend = p.Blend
			zero = pz
			first = false
		}
	}
	return runs
}
