package core

// dispatchCB decodes a CB-prefixed opcode using the same x/y/z breakdown:
// x=0 rotate/shift, x=1 BIT, x=2 RES, x=3 SET, all parametrized by the
// target register r[z] and (for x=0/1/2/3) the bit or rotate-kind index y.
func (c *Core) dispatchCB(op byte) {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	switch x {
	case 0:
		v := c.getReg8(z)
		res, cy := c.cbRotOp(y, v)
		c.setReg8(z, res)
		c.setFlags(res == 0, false, false, cy)
	case 1:
		v := c.getReg8(z)
		c.setFlags(v&(1<<y) == 0, false, true, c.flagSet(flagC))
	case 2:
		v := c.getReg8(z)
		c.setReg8(z, v&^(1<<y))
	case 3:
		v := c.getReg8(z)
		c.setReg8(z, v|(1<<y))
	}
}

func (c *Core) cbRotOp(op byte, v byte) (res byte, cy bool) {
	switch op {
	case 0: // RLC
		return rotl(v, v&0x80 != 0)
	case 1: // RRC
		return rotr(v, v&0x01 != 0)
	case 2: // RL
		return rotl(v, c.flagSet(flagC))
	case 3: // RR
		return rotr(v, c.flagSet(flagC))
	case 4: // SLA
		return v << 1, v&0x80 != 0
	case 5: // SRA
		return (v >> 1) | (v & 0x80), v&0x01 != 0
	case 6: // SWAP
		return v<<4 | v>>4, false
	default: // SRL
		return v >> 1, v&0x01 != 0
	}
}
