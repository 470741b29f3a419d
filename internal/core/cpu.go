package core

// step executes exactly one CPU "unit of work": either one full instruction,
// one idle M-cycle while halted, one idle M-cycle while stopped, or an
// interrupt dispatch. Every peripheral advances alongside it through the
// tick() calls buried in readByte/writeByte, so the caller never needs to
// step the rest of the machine separately.
func (c *Core) step() FrameResult {
	if c.fatal {
		return FrameResult{Fatal: true, Message: c.fatalMsg}
	}
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.ime = true
		}
	}
	if c.stopped {
		c.stepStopped()
		return FrameResult{}
	}
	if c.serviceInterrupts() {
		return FrameResult{}
	}
	if c.halted {
		c.tick()
		return FrameResult{}
	}
	c.executeOne()
	if c.fatal {
		return FrameResult{Fatal: true, Message: c.fatalMsg}
	}
	return FrameResult{}
}

func (c *Core) stepStopped() {
	c.tick()
	if c.readJOYP()&0x0F != 0x0F {
		c.stopped = false
	}
}

func (c *Core) fetchByte() byte {
	b := c.readByte(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}
	return b
}

func (c *Core) fetchWord() uint16 {
	lo := uint16(c.fetchByte())
	hi := uint16(c.fetchByte())
	return hi<<8 | lo
}

func (c *Core) executeOne() {
	op := c.fetchByte()
	c.dispatch(op)
}

// enterStop runs the STOP opcode's side effects: a CGB speed-switch if one
// is armed, an outright halt-the-system condition, or the one fatal state
// this core surfaces to the shell — STOP executed with both joypad select
// lines disabled, which real hardware never wakes from on its own.
func (c *Core) enterStop() {
	c.fetchByte() // STOP's second byte, conventionally 0x00, always discarded
	if c.cgbGame && c.speedSwitch {
		c.doubleSpeed = !c.doubleSpeed
		c.speedSwitch = false
		for i := 0; i < 2050; i++ {
			c.tick()
		}
		return
	}
	if c.bothSelectLinesDisabled() {
		c.fatal = true
		c.fatalMsg = "stop executed with both joypad select lines disabled"
		return
	}
	c.stopped = true
}
