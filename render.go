package ember

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandSprite   CommandType = iota // single textured quad
	CommandParticle                    // one quad per live particle, walked from the emitter arena
	CommandTilemap                     // pre-built tile geometry from a TileMapLayer
)

// color32 is a compact RGBA color using float32, for render commands only.
type color32 struct {
	R, G, B, A float32
}

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type          CommandType
	Transform     [6]float32 // view * world affine
	TextureRegion TextureRegion
	Color         color32
	BlendMode     BlendMode
	RenderLayer   uint8
	GlobalOrder   int
	treeOrder     int // assigned during traversal for stable sort

	// directImage, when non-nil, is drawn instead of an atlas page lookup.
	// Sprites use it for custom images; a particle command uses it as the
	// texture for every particle (e.g. WhitePixel).
	directImage *ebiten.Image

	// emitter references the particle emitter for CommandParticle commands.
	emitter *ParticleEmitter

	// Tilemap-only fields (slice headers into the layer's geometry buffer).
	tilemapVerts []ebiten.Vertex
	tilemapInds  []uint16
	tilemapImage *ebiten.Image
}

// affine32 converts a [6]float64 affine matrix to [6]float32.
func affine32(m [6]float64) [6]float32 {
	return [6]float32{float32(m[0]), float32(m[1]), float32(m[2]), float32(m[3]), float32(m[4]), float32(m[5])}
}

// traverse walks the node tree depth-first, updating world transforms and
// emitting render commands for visible, renderable nodes. parentTransform is
// in world space; the camera view matrix is composed at emission time.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, treeOrder *int) {
	if !n.Visible {
		return
	}

	// Update world transform
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	// Determine if this node is culled. Culling only suppresses this node's
	// command emission — children are ALWAYS traversed because any node type
	// may have children whose world positions differ from the parent's AABB.
	culled := s.cullActive && n.Renderable && shouldCull(n, s.cullBounds)

	if n.Renderable && !culled {
		if n.customEmit != nil {
			// Composite nodes (tile layers) emit their own commands.
			n.customEmit(s, treeOrder)
		} else {
			switch n.Type {
			case NodeTypeSprite:
				*treeOrder++
				cmd := RenderCommand{
					Type:        CommandSprite,
					Transform:   affine32(multiplyAffine(s.viewTransform, n.worldTransform)),
					Color:       color32{float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A * n.worldAlpha)},
					BlendMode:   n.BlendMode,
					RenderLayer: n.RenderLayer,
					GlobalOrder: n.GlobalOrder,
					treeOrder:   *treeOrder,
				}
				if n.customImage != nil {
					cmd.directImage = n.customImage
				} else {
					cmd.TextureRegion = n.TextureRegion
				}
				s.commands = append(s.commands, cmd)
			case NodeTypeParticleEmitter:
				if n.Emitter != nil && n.Emitter.AliveCount() > 0 {
					*treeOrder++
					s.commands = append(s.commands, RenderCommand{
						Type:        CommandParticle,
						Transform:   affine32(multiplyAffine(s.viewTransform, n.worldTransform)),
						directImage: n.customImage,
						Color:       color32{float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A * n.worldAlpha)},
						BlendMode:   n.BlendMode,
						RenderLayer: n.RenderLayer,
						GlobalOrder: n.GlobalOrder,
						treeOrder:   *treeOrder,
						emitter:     n.Emitter,
					})
				}
				// NodeTypeContainer doesn't emit commands
			}
		}
	}

	// Traverse children (ZIndex sorted if needed)
	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, treeOrder)
	}
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func (s *Scene) rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	// Stable insertion sort by ZIndex.
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.GlobalOrder != b.GlobalOrder {
		return a.GlobalOrder < b.GlobalOrder
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := lo + width
			if mid > n {
				mid = n
			}
			hi := lo + 2*width
			if hi > n {
				hi = n
			}
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
