package core

// dispatch decodes op using the standard x/y/z/p/q breakdown of the SM83
// opcode map (x = op>>6, y = (op>>3)&7, z = op&7, p = y>>1, q = y&1): most
// of the 8-bit load, ALU, and inc/dec instructions fall into regular
// patterns across all eight r[y]/r[z] register slots, and only a handful of
// control-flow and miscellaneous opcodes need to be special-cased.
func (c *Core) dispatch(op byte) {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		c.dispatchX0(y, z, p, q)
	case 1:
		if y == 6 && z == 6 {
			c.halt()
			return
		}
		c.setReg8(y, c.getReg8(z))
	case 2:
		c.aluOp(y, c.getReg8(z))
	case 3:
		c.dispatchX3(y, z, p, q)
	}
}

func (c *Core) dispatchX0(y, z, p, q byte) {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1: // LD (nn),SP
			addr := c.fetchWord()
			c.writeByte(addr, byte(c.sp))
			c.writeByte(addr+1, byte(c.sp>>8))
		case 2:
			c.enterStop()
		case 3: // JR d, unconditional
			d := int8(c.fetchByte())
			c.tick()
			c.pc = uint16(int32(c.pc) + int32(d))
		default: // JR cc,d
			d := int8(c.fetchByte())
			if c.condTrue(y - 4) {
				c.tick()
				c.pc = uint16(int32(c.pc) + int32(d))
			}
		}
	case 1:
		if q == 0 {
			c.setRP16(p, c.fetchWord())
		} else {
			res, h, cy := add16(c.hl(), c.getRP16(p))
			c.tick()
			c.setHL(res)
			c.setFlagsKeepZ(false, h, cy)
		}
	case 2:
		var addr uint16
		switch p {
		case 0:
			addr = c.bc()
		case 1:
			addr = c.de()
		default:
			addr = c.hl()
		}
		if q == 0 {
			c.writeByte(addr, c.a)
		} else {
			c.a = c.readByte(addr)
		}
		if p == 2 {
			c.setHL(c.hl() + 1)
		} else if p == 3 {
			c.setHL(c.hl() - 1)
		}
	case 3:
		if q == 0 {
			c.setRP16(p, c.getRP16(p)+1)
		} else {
			c.setRP16(p, c.getRP16(p)-1)
		}
		c.tick()
	case 4:
		v := c.getReg8(y)
		res := v + 1
		c.setReg8(y, res)
		c.setFlagsZNHKeepC(res == 0, false, v&0x0F == 0x0F)
	case 5:
		v := c.getReg8(y)
		res := v - 1
		c.setReg8(y, res)
		c.setFlagsZNHKeepC(res == 0, true, v&0x0F == 0x00)
	case 6:
		c.setReg8(y, c.fetchByte())
	case 7:
		switch y {
		case 0:
			res, cy := rotl(c.a, c.a&0x80 != 0)
			c.a = res
			c.setFlags(false, false, false, cy)
		case 1:
			res, cy := rotr(c.a, c.a&0x01 != 0)
			c.a = res
			c.setFlags(false, false, false, cy)
		case 2:
			res, cy := rotl(c.a, c.flagSet(flagC))
			c.a = res
			c.setFlags(false, false, false, cy)
		case 3:
			res, cy := rotr(c.a, c.flagSet(flagC))
			c.a = res
			c.setFlags(false, false, false, cy)
		case 4:
			c.daa()
		case 5:
			c.a = ^c.a
			c.setFlags(c.flagSet(flagZ), true, true, c.flagSet(flagC))
		case 6:
			c.setFlags(c.flagSet(flagZ), false, false, true)
		case 7:
			c.setFlags(c.flagSet(flagZ), false, false, !c.flagSet(flagC))
		}
	}
}

func (c *Core) dispatchX3(y, z, p, q byte) {
	switch z {
	case 0:
		switch y {
		case 0, 1, 2, 3: // RET cc
			if c.condTrue(y) {
				c.tick()
				c.pc = c.popWord()
				c.tick()
			} else {
				c.tick()
			}
		case 4: // LDH (n),A
			addr := 0xFF00 + uint16(c.fetchByte())
			c.writeByte(addr, c.a)
		case 5: // ADD SP,e
			e := int8(c.fetchByte())
			res, h, cy := addSPSigned(c.sp, e)
			c.tick()
			c.tick()
			c.sp = res
			c.setFlags(false, false, h, cy)
		case 6: // LDH A,(n)
			addr := 0xFF00 + uint16(c.fetchByte())
			c.a = c.readByte(addr)
		case 7: // LD HL,SP+e
			e := int8(c.fetchByte())
			res, h, cy := addSPSigned(c.sp, e)
			c.tick()
			c.setHL(res)
			c.setFlags(false, false, h, cy)
		}
	case 1:
		if q == 0 {
			c.setRP2(p, c.popWord())
		} else {
			switch p {
			case 0:
				c.tick()
				c.pc = c.popWord()
			case 1:
				c.tick()
				c.pc = c.popWord()
				c.ime = true
			case 2:
				c.pc = c.hl()
			case 3:
				c.tick()
				c.sp = c.hl()
			}
		}
	case 2:
		switch y {
		case 0, 1, 2, 3:
			addr := c.fetchWord()
			if c.condTrue(y) {
				c.tick()
				c.pc = addr
			}
		case 4:
			c.writeByte(0xFF00+uint16(c.c), c.a)
		case 5:
			addr := c.fetchWord()
			c.writeByte(addr, c.a)
		case 6:
			c.a = c.readByte(0xFF00 + uint16(c.c))
		case 7:
			addr := c.fetchWord()
			c.a = c.readByte(addr)
		}
	case 3:
		switch y {
		case 0:
			addr := c.fetchWord()
			c.tick()
			c.pc = addr
		case 1:
			c.dispatchCB(c.fetchByte())
		case 6:
			c.ime = false
			c.eiDelay = 0
		case 7:
			c.eiDelay = 2
		default:
			// 0xD3,0xDB,0xDD,0xE3,0xE4,0xEB,0xEC,0xED,0xF4,0xFC,0xFD: illegal
			// opcodes put the CPU in the same halted state HALT uses, so a
			// pending, enabled interrupt still releases it; they do not lock
			// the CPU up permanently.
			c.halted = true
		}
	case 4:
		addr := c.fetchWord()
		if y <= 3 && c.condTrue(y) {
			c.tick()
			c.pushWord(c.pc)
			c.pc = addr
		} else if y > 3 {
			c.halted = true
		}
	case 5:
		if q == 0 {
			c.tick()
			c.pushWord(c.getRP2(p))
		} else if p == 0 {
			addr := c.fetchWord()
			c.tick()
			c.pushWord(c.pc)
			c.pc = addr
		} else {
			c.halted = true
		}
	case 6:
		c.aluOp(y, c.fetchByte())
	case 7:
		c.tick()
		c.pushWord(c.pc)
		c.pc = uint16(y) * 8
	}
}

func (c *Core) halt() {
	if !c.ime && c.ifReg&c.ieReg&0x1F != 0 {
		c.haltBug = true
	} else {
		c.halted = true
	}
}

func (c *Core) condTrue(y byte) bool {
	switch y & 3 {
	case 0:
		return !c.flagSet(flagZ)
	case 1:
		return c.flagSet(flagZ)
	case 2:
		return !c.flagSet(flagC)
	default:
		return c.flagSet(flagC)
	}
}

func (c *Core) getReg8(idx byte) byte {
	switch idx {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.readByte(c.hl())
	default:
		return c.a
	}
}

func (c *Core) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.writeByte(c.hl(), v)
	default:
		c.a = v
	}
}

func (c *Core) getRP16(p byte) uint16 {
	switch p {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.sp
	}
}

func (c *Core) setRP16(p byte, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.sp = v
	}
}

func (c *Core) getRP2(p byte) uint16 {
	switch p {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.af()
	}
}

func (c *Core) setRP2(p byte, v uint16) {
	switch p {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}

func (c *Core) aluOp(y byte, v byte) {
	switch y {
	case 0:
		res, z, h, cy := add8(c.a, v)
		c.a = res
		c.setFlags(z, false, h, cy)
	case 1:
		res, z, h, cy := adc8(c.a, v, c.flagSet(flagC))
		c.a = res
		c.setFlags(z, false, h, cy)
	case 2:
		res, z, h, cy := sub8(c.a, v)
		c.a = res
		c.setFlags(z, true, h, cy)
	case 3:
		res, z, h, cy := sbc8(c.a, v, c.flagSet(flagC))
		c.a = res
		c.setFlags(z, true, h, cy)
	case 4:
		c.a &= v
		c.setFlags(c.a == 0, false, true, false)
	case 5:
		c.a ^= v
		c.setFlags(c.a == 0, false, false, false)
	case 6:
		c.a |= v
		c.setFlags(c.a == 0, false, false, false)
	case 7:
		_, z, h, cy := sub8(c.a, v)
		c.setFlags(z, true, h, cy)
	}
}

func (c *Core) daa() {
	a := c.a
	var adjust byte
	carry := false
	if c.flagSet(flagH) || (!c.flagSet(flagN) && a&0x0F > 9) {
		adjust |= 0x06
	}
	if c.flagSet(flagC) || (!c.flagSet(flagN) && a > 0x99) {
		adjust |= 0x60
		carry = true
	}
	if c.flagSet(flagN) {
		a -= adjust
	} else {
		a += adjust
	}
	c.a = a
	c.setFlags(a == 0, c.flagSet(flagN), false, carry)
}
