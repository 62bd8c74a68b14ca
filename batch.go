package ember

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// batchKey groups render commands that can be submitted in a single draw call.
type batchKey struct {
	blend BlendMode
	page  uint16
}

func commandBatchKey(cmd *RenderCommand) batchKey {
	return batchKey{
		blend: cmd.BlendMode,
		page:  cmd.TextureRegion.Page,
	}
}

// pageImage resolves an atlas page index to its image, or nil if unknown.
func (s *Scene) pageImage(page uint16) *ebiten.Image {
	if page == magentaPlaceholderPage {
		return ensureMagentaImage()
	}
	if int(page) < len(s.pages) {
		return s.pages[page]
	}
	return nil
}

// submitBatches iterates sorted commands, coalescing consecutive same-key
// atlas sprites into a single DrawTriangles32 call. Particle and tilemap
// commands flush the current sprite run and submit their own geometry.
func (s *Scene) submitBatches(target *ebiten.Image) {
	if len(s.commands) == 0 {
		return
	}

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]

	var currentKey batchKey
	var op ebiten.DrawImageOptions

	for i := range s.commands {
		cmd := &s.commands[i]

		switch cmd.Type {
		case CommandSprite:
			if cmd.directImage != nil {
				// Direct-image sprites cannot be coalesced (different source images).
				s.flushSpriteBatch(target, currentKey)
				s.submitDirectSprite(target, cmd, &op)
				continue
			}
			key := commandBatchKey(cmd)
			if key != currentKey {
				s.flushSpriteBatch(target, currentKey)
			}
			currentKey = key
			s.appendSpriteQuad(cmd)

		case CommandParticle:
			s.flushSpriteBatch(target, currentKey)
			s.submitParticles(target, cmd)

		case CommandTilemap:
			s.flushSpriteBatch(target, currentKey)
			s.submitTilemap(target, cmd)
		}
	}

	s.flushSpriteBatch(target, currentKey)
}

// submitDirectSprite draws a custom-image sprite command with DrawImage.
func (s *Scene) submitDirectSprite(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.GeoM.Concat(commandGeoM(cmd))
	op.ColorScale.Reset()
	a := cmd.Color.A
	if a == 0 && cmd.Color.R == 0 && cmd.Color.G == 0 && cmd.Color.B == 0 {
		op.ColorScale.Scale(1, 1, 1, 1)
	} else {
		op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)
	}
	op.Blend = cmd.BlendMode.EbitenBlend()
	target.DrawImage(cmd.directImage, op)
}

// commandGeoM converts a command's [6]float32 transform into an ebiten.GeoM.
func commandGeoM(cmd *RenderCommand) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, float64(cmd.Transform[0]))
	m.SetElement(1, 0, float64(cmd.Transform[1]))
	m.SetElement(0, 1, float64(cmd.Transform[2]))
	m.SetElement(1, 1, float64(cmd.Transform[3]))
	m.SetElement(0, 2, float64(cmd.Transform[4]))
	m.SetElement(1, 2, float64(cmd.Transform[5]))
	return m
}

// appendSpriteQuad appends 4 vertices and 6 indices for a single atlas sprite.
func (s *Scene) appendSpriteQuad(cmd *RenderCommand) {
	r := &cmd.TextureRegion
	t := &cmd.Transform // [a, b, c, d, tx, ty]

	// Local quad corners: trim offset shifts the origin, visual dimensions
	// are the authored Width × Height.
	ox := float64(r.OffsetX)
	oy := float64(r.OffsetY)
	w := float64(r.Width)
	h := float64(r.Height)

	// 4 local positions: TL, TR, BL, BR
	lx := [4]float64{ox, ox + w, ox, ox + w}
	ly := [4]float64{oy, oy, oy + h, oy + h}

	a, b, c, d := float64(t[0]), float64(t[1]), float64(t[2]), float64(t[3])
	tx, ty := float64(t[4]), float64(t[5])

	// Source UVs (pixel coordinates on the atlas page).
	var sx, sy [4]float32
	if r.Rotated {
		// Rotated region stored 90° CW at (r.X, r.Y) with stored rect
		// width=r.Height, height=r.Width. Mapping visual corners → atlas:
		//   Visual TL → atlas (r.X + r.Height, r.Y)
		//   Visual TR → atlas (r.X + r.Height, r.Y + r.Width)
		//   Visual BL → atlas (r.X, r.Y)
		//   Visual BR → atlas (r.X, r.Y + r.Width)
		rx := float32(r.X)
		ry := float32(r.Y)
		rh := float32(r.Height) // stored width in atlas
		rw := float32(r.Width)  // stored height in atlas
		sx = [4]float32{rx + rh, rx + rh, rx, rx}
		sy = [4]float32{ry, ry + rw, ry, ry + rw}
	} else {
		rx := float32(r.X)
		ry := float32(r.Y)
		rw := float32(r.Width)
		rh := float32(r.Height)
		sx = [4]float32{rx, rx + rw, rx, rx + rw}
		sy = [4]float32{ry, ry, ry + rh, ry + rh}
	}

	// Premultiplied RGBA. Zero-color sentinel → opaque white.
	var cr, cg, cb, ca float32
	ca = cmd.Color.A
	if ca == 0 && cmd.Color.R == 0 && cmd.Color.G == 0 && cmd.Color.B == 0 {
		cr, cg, cb, ca = 1, 1, 1, 1
	} else {
		cr = cmd.Color.R * ca
		cg = cmd.Color.G * ca
		cb = cmd.Color.B * ca
	}

	base := uint32(len(s.batchVerts))

	for i := 0; i < 4; i++ {
		dx := float32(a*lx[i] + c*ly[i] + tx)
		dy := float32(b*lx[i] + d*ly[i] + ty)
		s.batchVerts = append(s.batchVerts, ebiten.Vertex{
			DstX:   dx,
			DstY:   dy,
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}

	// Two triangles: TL-TR-BL, TR-BR-BL
	s.batchInds = append(s.batchInds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// flushSpriteBatch submits accumulated vertices as a single DrawTriangles32 call.
func (s *Scene) flushSpriteBatch(target *ebiten.Image, key batchKey) {
	if len(s.batchVerts) == 0 {
		return
	}

	page := s.pageImage(key.page)
	if page == nil {
		s.batchVerts = s.batchVerts[:0]
		s.batchInds = s.batchInds[:0]
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = key.blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	target.DrawTriangles32(s.batchVerts, s.batchInds, page, &triOp)

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]
}

// submitParticles draws an emitter's live particles, walking the active chain
// in draw order. Consecutive particles sharing an atlas page and blend mode
// coalesce into one DrawTriangles32 call; a page or blend change breaks the
// run. A directImage on the command replaces the atlas lookup for every
// particle, so only blend changes break runs. Particles with no texture
// behavior keep a zero Region and draw as [WhitePixel].
func (s *Scene) submitParticles(target *ebiten.Image, cmd *RenderCommand) {
	e := cmd.emitter
	if e == nil || e.destroyed || e.arena.activeCount == 0 {
		return
	}

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]

	direct := cmd.directImage
	var runImg *ebiten.Image
	var runBlend BlendMode

	for i := e.arena.activeFirst; i != noIndex; {
		p := e.arena.at(i)
		i = p.next

		quadImg := direct
		if quadImg == nil && (p.Region.Width == 0 || p.Region.Height == 0) {
			quadImg = WhitePixel
		}
		img := quadImg
		if img == nil {
			img = s.pageImage(p.Region.Page)
			if img == nil {
				continue
			}
		}
		if len(s.batchVerts) > 0 && (img != runImg || p.Blend != runBlend) {
			s.flushParticleRun(target, runImg, runBlend)
		}
		runImg = img
		runBlend = p.Blend
		s.appendParticleQuad(cmd, p, quadImg)
	}

	s.flushParticleRun(target, runImg, runBlend)
}

// appendParticleQuad appends one particle's quad, anchored at the region
// center, with the particle's rotation and per-axis scale composed into the
// command's base transform.
func (s *Scene) appendParticleQuad(cmd *RenderCommand, p *Particle, direct *ebiten.Image) {
	bt := &cmd.Transform
	ba, bb, bc, bd := float64(bt[0]), float64(bt[1]), float64(bt[2]), float64(bt[3])
	btx, bty := float64(bt[4]), float64(bt[5])

	// Local transform: Translate(p.X, p.Y) * Rotate(p.Rotation) * Scale(sx, sy).
	sin, cos := math.Sincos(p.Rotation)
	la := cos * p.ScaleX
	lb := sin * p.ScaleX
	lc := -sin * p.ScaleY
	ld := cos * p.ScaleY

	// Composed: base * local.
	fa := ba*la + bc*lb
	fb := bb*la + bd*lb
	fc := ba*lc + bc*ld
	fd := bb*lc + bd*ld
	ftx := ba*p.X + bc*p.Y + btx
	fty := bb*p.X + bd*p.Y + bty

	var qw, qh, x0, y0 float64
	var sx, sy [4]float32
	if direct != nil {
		b := direct.Bounds()
		qw = float64(b.Dx())
		qh = float64(b.Dy())
		x0 = -qw / 2
		y0 = -qh / 2
		u0, v0 := float32(b.Min.X), float32(b.Min.Y)
		u1, v1 := float32(b.Max.X), float32(b.Max.Y)
		sx = [4]float32{u0, u1, u0, u1}
		sy = [4]float32{v0, v0, v1, v1}
	} else {
		r := &p.Region
		qw = float64(r.Width)
		qh = float64(r.Height)
		// Center anchor on the untrimmed box; the trim offset places the
		// stored pixels inside it.
		x0 = float64(r.OffsetX) - float64(r.OriginalW)/2
		y0 = float64(r.OffsetY) - float64(r.OriginalH)/2
		rx, ry := float32(r.X), float32(r.Y)
		if r.Rotated {
			rh := float32(r.Height) // stored width in atlas
			rw := float32(r.Width)  // stored height in atlas
			sx = [4]float32{rx + rh, rx + rh, rx, rx}
			sy = [4]float32{ry, ry + rw, ry, ry + rw}
		} else {
			rw, rh := float32(r.Width), float32(r.Height)
			sx = [4]float32{rx, rx + rw, rx, rx + rw}
			sy = [4]float32{ry, ry, ry + rh, ry + rh}
		}
	}

	// Particle tint × node tint, premultiplied.
	ca := float32(p.Alpha) * cmd.Color.A
	cr := float32(p.Color.R) * cmd.Color.R * ca
	cg := float32(p.Color.G) * cmd.Color.G * ca
	cb := float32(p.Color.B) * cmd.Color.B * ca

	lx := [4]float64{x0, x0 + qw, x0, x0 + qw}
	ly := [4]float64{y0, y0, y0 + qh, y0 + qh}

	base := uint32(len(s.batchVerts))

	for j := 0; j < 4; j++ {
		dx := float32(fa*lx[j] + fc*ly[j] + ftx)
		dy := float32(fb*lx[j] + fd*ly[j] + fty)
		s.batchVerts = append(s.batchVerts, ebiten.Vertex{
			DstX:   dx,
			DstY:   dy,
			SrcX:   sx[j],
			SrcY:   sy[j],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}

	s.batchInds = append(s.batchInds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// flushParticleRun submits the accumulated particle quads for one (image,
// blend) run.
func (s *Scene) flushParticleRun(target *ebiten.Image, img *ebiten.Image, blend BlendMode) {
	if len(s.batchVerts) == 0 || img == nil {
		s.batchVerts = s.batchVerts[:0]
		s.batchInds = s.batchInds[:0]
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	target.DrawTriangles32(s.batchVerts, s.batchInds, img, &triOp)

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]
}

// submitTilemap draws pre-built tile geometry with DrawTriangles. The layer
// premultiplies vertex colors when it fills the buffer.
func (s *Scene) submitTilemap(target *ebiten.Image, cmd *RenderCommand) {
	if cmd.tilemapImage == nil || len(cmd.tilemapVerts) == 0 {
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = cmd.BlendMode.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	target.DrawTriangles(cmd.tilemapVerts, cmd.tilemapInds, cmd.tilemapImage, &triOp)
}
