package core

// oamDMAPhase tracks the one-cycle startup delay real OAM DMA has: writing
// FF46 doesn't start the transfer until the following M-cycle, so a single
// extra CPU access can still land on OAM between the register write and the
// first copied byte.
type oamDMAPhase int

const (
	oamDMAInactive oamDMAPhase = iota
	oamDMARegWritten
	oamDMAStarting
	oamDMAActive
)

type oamDMAState struct {
	phase  oamDMAPhase
	src    uint16
	offset int

	// blocking stays true across a retrigger's RegWritten/Starting window so
	// the external bus never reopens between an in-flight transfer and the
	// new one that replaces it. It is NOT set on the very first trigger from
	// Inactive, which keeps the one-cycle startup gap above.
	blocking bool
}

func (c *Core) writeDMA(v byte) {
	if c.oamDMA.phase == oamDMAActive {
		c.oamDMA.blocking = true
	}
	c.oamDMA.phase = oamDMARegWritten
	c.oamDMA.src = uint16(v) << 8
	c.oamDMA.offset = 0
}

func (c *Core) stepOAMDMA() {
	switch c.oamDMA.phase {
	case oamDMARegWritten:
		c.oamDMA.phase = oamDMAStarting
	case oamDMAStarting:
		c.oamDMA.phase = oamDMAActive
	case oamDMAActive:
		c.oam[c.oamDMA.offset] = c.busRead(c.oamDMA.src + uint16(c.oamDMA.offset))
		c.oamDMA.offset++
		if c.oamDMA.offset >= 0xA0 {
			c.oamDMA.phase = oamDMAInactive
			c.oamDMA.blocking = false
		}
	}
}

func (c *Core) oamDMABlocksExternalBus() bool {
	return c.oamDMA.phase == oamDMAActive || c.oamDMA.blocking
}

// hdmaState implements CGB VRAM DMA: a one-shot general-purpose transfer
// (GDMA), or a 16-byte-per-HBlank transfer (HDMA) gated on PPU mode 0.
type hdmaState struct {
	src, dst uint16
	length   int // bytes remaining
	hblank   bool
	active   bool

	// transferring guards runGDMAChunk's own per-byte Ticks from re-entering
	// stepHDMA while a chunk copy is already in flight.
	transferring bool
}

func (c *Core) writeHDMA1(v byte) { c.hdma.src = uint16(v)<<8 | c.hdma.src&0xFF }
func (c *Core) writeHDMA2(v byte) { c.hdma.src = c.hdma.src&0xFF00 | uint16(v&0xF0) }
func (c *Core) writeHDMA3(v byte) {
	c.hdma.dst = 0x8000 | uint16(v&0x1F)<<8 | c.hdma.dst&0xFF
}
func (c *Core) writeHDMA4(v byte) { c.hdma.dst = c.hdma.dst&0xFF00 | uint16(v&0xF0) }

func (c *Core) writeHDMA5(v byte) {
	if !c.cgbGame {
		return
	}
	if c.hdma.active && v&0x80 == 0 {
		c.hdma.active = false // stop an in-flight HDMA transfer
		return
	}
	c.hdma.length = (int(v&0x7F) + 1) * 16
	c.hdma.hblank = v&0x80 != 0
	c.hdma.active = true
	if !c.hdma.hblank {
		c.runGDMAChunk(c.hdma.length)
		c.hdma.active = false
	}
}

func (c *Core) readHDMA5() byte {
	if !c.hdma.active {
		return 0xFF
	}
	return byte(c.hdma.length/16-1) & 0x7F
}

// runGDMAChunk copies n bytes, charging one M-cycle per byte the way the
// real transfer stalls the CPU for its duration.
func (c *Core) runGDMAChunk(n int) {
	c.hdma.transferring = true
	for i := 0; i < n; i++ {
		b := c.busRead(c.hdma.src)
		c.vram[c.vramBank][c.hdma.dst&0x1FFF] = b
		c.hdma.src++
		c.hdma.dst++
		c.hdma.length--
		c.tick()
	}
	c.hdma.transferring = false
}

// stepHDMA copies one 16-byte block per HBlank while an HDMA transfer is
// armed. GDMA already ran to completion synchronously in writeHDMA5.
func (c *Core) stepHDMA() {
	if c.hdma.transferring || !c.hdma.active || !c.hdma.hblank {
		return
	}
	if c.ppu.mode != ppuModeHBlank || !c.ppu.hdmaArmedThisLine {
		return
	}
	c.runGDMAChunk(16)
	c.ppu.hdmaArmedThisLine = false
	if c.hdma.length <= 0 {
		c.hdma.active = false
	}
}
