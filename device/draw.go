// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package device

// DrawMode selects how a primitive's pixels combine with whatever is
// already in the framebuffer. Unknown (an out-of-range value read
// from a DRAW-family statement's mode argument) behaves as Copy.
type DrawMode int

const (
	DrawUnknown DrawMode = iota
	DrawCopy             // OR
	DrawErase             // AND NOT
	DrawNot               // XOR
)

var (
	startBitMask = [8]byte{255, 127, 63, 31, 15, 7, 3, 1}
	endBitMask   = [8]byte{128, 192, 224, 240, 248, 252, 254, 255}
	pointBitMask = [8]byte{128, 64, 32, 16, 8, 4, 2, 1}
)

func (m DrawMode) apply(b, mask byte) byte {
	switch m {
	case DrawErase:
		return b &^ mask
	case DrawNot:
		return b ^ mask
	default: // DrawCopy, DrawUnknown
		return b | mask
	}
}

// pointAt sets, clears, or toggles the single pixel at (x, y)
// according to mode, writing directly into the framebuffer without
// going through WriteByte's dirty tracking (callers update the dirty
// rectangle themselves, in one shot covering the whole primitive).
func (e *Emulator) pointAt(x, y int, mode DrawMode) {
	base := int(e.Props.GraphicsBaseAddr)
	offset := y*screenWidthByte + (x >> 3)
	e.memory[base+offset] = mode.apply(e.memory[base+offset], pointBitMask[x&7])
}

func (e *Emulator) maskByte(offset int, mask byte, mode DrawMode) {
	base := int(e.Props.GraphicsBaseAddr)
	e.memory[base+offset] = mode.apply(e.memory[base+offset], mask)
}

// drawHorLineUnchecked fills columns [x1, x2] (inclusive, already
// clipped to the screen) of row y, one byte-aligned mask write per
// byte spanned rather than one write per pixel.
func (e *Emulator) drawHorLineUnchecked(x1, x2, y int, mode DrawMode) {
	rowOffset := y * screenWidthByte
	x1Byte, x2Byte := x1>>3, x2>>3
	startMask, endMask := startBitMask[x1&7], endBitMask[x2&7]
	if x1Byte == x2Byte {
		e.maskByte(rowOffset+x1Byte, startMask&endMask, mode)
		return
	}
	e.maskByte(rowOffset+x1Byte, startMask, mode)
	e.maskByte(rowOffset+x2Byte, endMask, mode)
	for b := x1Byte + 1; b < x2Byte; b++ {
		e.maskByte(rowOffset+b, 255, mode)
	}
}

func (e *Emulator) drawHorLine(left, right, y int, mode DrawMode) {
	if y < 0 || y >= screenHeight || left >= screenWidth {
		return
	}
	if right >= screenWidth {
		right = screenWidth - 1
	}
	if right < left {
		return
	}
	e.drawHorLineUnchecked(left, right, y, mode)
}

func (e *Emulator) drawVerLine(x, top, bottom int, mode DrawMode) {
	if x < 0 || x >= screenWidth || top >= screenHeight {
		return
	}
	if bottom >= screenHeight {
		bottom = screenHeight - 1
	}
	if bottom < top {
		return
	}
	mask := pointBitMask[x&7]
	colOffset := x >> 3
	for y := top; y <= bottom; y++ {
		e.maskByte(y*screenWidthByte+colOffset, mask, mode)
	}
}

// DrawPoint implements PSET/DRAW's single-coordinate form.
func (e *Emulator) DrawPoint(x, y int, mode DrawMode) {
	if x < 0 || x >= screenWidth || y < 0 || y >= screenHeight {
		return
	}
	e.pointAt(x, y, mode)
	e.updateDirtyArea(x, y, x+1, y+1)
}

// DrawLine implements LINE: Bresenham with per-pixel masked writes,
// specialized to a single masked fill when the segment is purely
// horizontal or vertical. Endpoints are clipped to the screen by the
// caller having already validated they came from a u8-ranged
// coordinate expression; this mirrors the original's unsigned
// wraparound-based stepping rather than floating-point accumulation.
func (e *Emulator) DrawLine(x1, y1, x2, y2 int, mode DrawMode) {
	if y1 == y2 {
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		e.drawHorLine(x1, x2, y1, mode)
		e.updateDirtyArea(x1, y1, x2+1, y1+1)
		return
	}
	if x1 == x2 {
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		e.drawVerLine(x1, y1, y2, mode)
		e.updateDirtyArea(x1, y1, x1+1, y2+1)
		return
	}
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}
	deltaX := x2 - x1
	deltaY := y2 - y1
	incY := 1
	if deltaY < 0 {
		incY = -1
		deltaY = -deltaY
	}
	dist := deltaX
	if deltaY > dist {
		dist = deltaY
	}
	errX, errY := 0, 0
	x, y := x1, y1
	for i := 0; i <= dist; i++ {
		if x >= 0 && x < screenWidth && y >= 0 && y < screenHeight {
			e.pointAt(x, y, mode)
		}
		errX += deltaX
		errY += deltaY
		if errX >= dist {
			errX -= dist
			x++
		}
		if errY >= dist {
			errY -= dist
			y += incY
		}
	}
	top, bottom := y1, y2
	if top > bottom {
		top, bottom = bottom, top
	}
	e.updateDirtyArea(x1, top, x2+1, bottom+1)
}

// DrawBox implements BOX: four edges, or a stack of horizontal-line
// fills when filled.
func (e *Emulator) DrawBox(x1, y1, x2, y2 int, fill bool, mode DrawMode) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x1 >= screenWidth || y1 >= screenHeight {
		return
	}
	if fill {
		cx2, cy2 := x2, y2
		if cx2 >= screenWidth {
			cx2 = screenWidth - 1
		}
		if cy2 >= screenHeight {
			cy2 = screenHeight - 1
		}
		for y := y1; y <= cy2; y++ {
			e.drawHorLineUnchecked(x1, cx2, y, mode)
		}
	} else {
		e.drawHorLine(x1, x2, y1, mode)
		e.drawHorLine(x1, x2, y2, mode)
		e.drawVerLine(x1, y1, y2, mode)
		e.drawVerLine(x2, y1, y2, mode)
	}
	e.updateDirtyArea(x1, y1, x2+1, y2+1)
}

// DrawCircle implements CIRCLE as the special case rx == ry == r of
// Ellipse.
func (e *Emulator) DrawCircle(x, y, r int, fill bool, mode DrawMode) {
	e.DrawEllipse(x, y, r, r, fill, mode)
}

func (e *Emulator) ellipseHorLine(x1, x2, y int, mode DrawMode) {
	if y < 0 || y >= screenHeight {
		return
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if x1 >= screenWidth {
		return
	}
	if x2 >= screenWidth {
		x2 = screenWidth - 1
	}
	if x1 < 0 {
		x1 = 0
	}
	e.drawHorLineUnchecked(x1, x2, y, mode)
}

func (e *Emulator) ellipsePoint(x, y int, mode DrawMode) {
	if x >= 0 && x < screenWidth && y >= 0 && y < screenHeight {
		e.pointAt(x, y, mode)
	}
}

func (e *Emulator) ellipsePart(x, y, rx, ry int, fill bool, mode DrawMode) {
	if fill {
		e.ellipseHorLine(x-rx, x+rx, y-ry, mode)
		e.ellipseHorLine(x-rx, x+rx, y+ry, mode)
	} else {
		e.ellipsePoint(x-rx, y-ry, mode)
		e.ellipsePoint(x+rx, y-ry, mode)
		e.ellipsePoint(x-rx, y+ry, mode)
		e.ellipsePoint(x+rx, y+ry, mode)
	}
}

// DrawEllipse implements ELLIPSE with the original's incremental
// midpoint tracker: (deltaX, deltaY, fx, fy, fxy) walk the first
// octant of a circle of radius r = max(rx, ry), emitting mirrored
// points (or two horizontal fill segments) scaled back down to the
// true rx/ry via tmpX/tmpY.
func (e *Emulator) DrawEllipse(x0, y0, rx, ry int, fill bool, mode DrawMode) {
	if rx == 0 && ry == 0 {
		e.DrawPoint(x0, y0, mode)
		return
	}
	distX, distY := rx, ry
	r := distX
	if distY > r {
		r = distY
	}
	incX, incY := -1, 1
	fy := 1
	fx := 1 - 2*r
	fxy := 0
	deltaX, deltaY := 0, 0
	tmpX, tmpY := rx, 0
	partStart := false

	e.ellipsePart(x0, y0, tmpX, tmpY, fill, mode)
	for tmpX != 0 {
		if fxy >= 0 {
			deltaX += distX
			if deltaX >= r {
				tmpX += incX
				deltaX -= r
				if tmpX+1 != distX {
					e.ellipsePart(x0, y0, tmpX, tmpY, fill, mode)
				}
			}
			fxy -= abs(fx)
			fx += 2
			if fx < 0 || fx >= 3 {
				continue
			}
			incY = -incY
			fy = -fy + 2
			fxy = -fxy
		} else {
			deltaY += distY
			if deltaY >= r {
				deltaY -= r
				tmpY += incY
				if !partStart && (tmpY == 1 || tmpY == 2) {
					e.ellipsePart(x0, y0, distX, tmpY, fill, mode)
				} else {
					partStart = true
					e.ellipsePart(x0, y0, tmpX, tmpY, fill, mode)
				}
			}
			fxy += abs(fy)
			fy += 2
			if fy < 0 || fy > 2 {
				continue
			}
			incX = -incX
			fx = -fx + 2
			fxy = -fxy
		}
	}

	left, top := x0-rx, y0-ry
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	right, bottom := x0+rx+1, y0+ry+1
	if right > screenWidth {
		right = screenWidth
	}
	if bottom > screenHeight {
		bottom = screenHeight
	}
	e.updateDirtyArea(left, top, right, bottom)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
