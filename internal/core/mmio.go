package core

// readIO and writeIO decode the 0xFF00-0xFF7F register window. Registers
// this core doesn't model (SGB, unused bits) read back as 0xFF per spec's
// "unmodeled register reads as 0xFF" rule; writes to them are accepted and
// dropped silently.
func (c *Core) readIO(addr uint16) byte {
	switch addr {
	case 0xFF00:
		return c.readJOYP()
	case 0xFF01:
		return c.readSB()
	case 0xFF02:
		return c.readSC()
	case 0xFF04:
		return c.readDIV()
	case 0xFF05:
		return c.readTIMA()
	case 0xFF06:
		return c.readTMA()
	case 0xFF07:
		return c.readTAC()
	case 0xFF0F:
		return c.ifReg | 0xE0
	case 0xFF10, 0xFF11, 0xFF12, 0xFF13, 0xFF14,
		0xFF16, 0xFF17, 0xFF18, 0xFF19,
		0xFF1A, 0xFF1B, 0xFF1C, 0xFF1D, 0xFF1E,
		0xFF20, 0xFF21, 0xFF22, 0xFF23,
		0xFF24, 0xFF25, 0xFF26:
		return c.readAPU(addr)
	case 0xFF30, 0xFF31, 0xFF32, 0xFF33, 0xFF34, 0xFF35, 0xFF36, 0xFF37,
		0xFF38, 0xFF39, 0xFF3A, 0xFF3B, 0xFF3C, 0xFF3D, 0xFF3E, 0xFF3F:
		return c.readWaveRAM(addr)
	case 0xFF40:
		return c.ppu.lcdc
	case 0xFF41:
		return c.readSTAT()
	case 0xFF42:
		return c.ppu.scy
	case 0xFF43:
		return c.ppu.scx
	case 0xFF44:
		return c.readLY()
	case 0xFF45:
		return c.ppu.lyc
	case 0xFF46:
		return 0xFF
	case 0xFF47:
		return c.ppu.bgp
	case 0xFF48:
		return c.ppu.obp0
	case 0xFF49:
		return c.ppu.obp1
	case 0xFF4A:
		return c.ppu.wy
	case 0xFF4B:
		return c.ppu.wx
	case 0xFF4D:
		v := byte(0x7E)
		if c.doubleSpeed {
			v |= 0x80
		}
		if c.speedSwitch {
			v |= 0x01
		}
		return v
	case 0xFF4F:
		return c.vramBank | 0xFE
	case 0xFF51, 0xFF52, 0xFF53, 0xFF54:
		return 0xFF
	case 0xFF55:
		return c.readHDMA5()
	case 0xFF68:
		return c.ppu.bgPalIdx
	case 0xFF69:
		return c.readCGBPalette(c.ppu.bgPal[:], c.ppu.bgPalIdx)
	case 0xFF6A:
		return c.ppu.obPalIdx
	case 0xFF6B:
		return c.readCGBPalette(c.ppu.obPal[:], c.ppu.obPalIdx)
	case 0xFF70:
		return c.wramBank | 0xF8
	default:
		return 0xFF
	}
}

func (c *Core) writeIO(addr uint16, v byte) {
	switch addr {
	case 0xFF00:
		c.writeJOYP(v)
	case 0xFF01:
		c.writeSB(v)
	case 0xFF02:
		c.writeSC(v)
	case 0xFF04:
		c.writeDIV(v)
	case 0xFF05:
		c.writeTIMA(v)
	case 0xFF06:
		c.writeTMA(v)
	case 0xFF07:
		c.writeTAC(v)
	case 0xFF0F:
		c.ifReg = v & 0x1F
	case 0xFF10, 0xFF11, 0xFF12, 0xFF13, 0xFF14,
		0xFF16, 0xFF17, 0xFF18, 0xFF19,
		0xFF1A, 0xFF1B, 0xFF1C, 0xFF1D, 0xFF1E,
		0xFF20, 0xFF21, 0xFF22, 0xFF23,
		0xFF24, 0xFF25, 0xFF26:
		c.writeAPU(addr, v)
	case 0xFF30, 0xFF31, 0xFF32, 0xFF33, 0xFF34, 0xFF35, 0xFF36, 0xFF37,
		0xFF38, 0xFF39, 0xFF3A, 0xFF3B, 0xFF3C, 0xFF3D, 0xFF3E, 0xFF3F:
		c.writeWaveRAM(addr, v)
	case 0xFF40:
		c.writeLCDC(v)
	case 0xFF41:
		c.writeSTAT(v)
	case 0xFF42:
		c.ppu.scy = v
	case 0xFF43:
		c.ppu.scx = v
	case 0xFF45:
		c.writeLYC(v)
	case 0xFF46:
		c.writeDMA(v)
	case 0xFF47:
		c.ppu.bgp = v
	case 0xFF48:
		c.ppu.obp0 = v
	case 0xFF49:
		c.ppu.obp1 = v
	case 0xFF4A:
		c.ppu.wy = v
	case 0xFF4B:
		c.ppu.wx = v
	case 0xFF4D:
		if c.cgbGame {
			c.speedSwitch = v&0x01 != 0
		}
	case 0xFF4F:
		if c.cgbGame {
			c.vramBank = v & 0x01
		}
	case 0xFF50:
		if v&0x01 != 0 {
			c.bootActive = false
		}
	case 0xFF51:
		c.writeHDMA1(v)
	case 0xFF52:
		c.writeHDMA2(v)
	case 0xFF53:
		c.writeHDMA3(v)
	case 0xFF54:
		c.writeHDMA4(v)
	case 0xFF55:
		c.writeHDMA5(v)
	case 0xFF68:
		c.ppu.bgPalIdx = v
	case 0xFF69:
		c.writeCGBPalette(c.ppu.bgPal[:], &c.ppu.bgPalIdx, v)
	case 0xFF6A:
		c.ppu.obPalIdx = v
	case 0xFF6B:
		c.writeCGBPalette(c.ppu.obPal[:], &c.ppu.obPalIdx, v)
	case 0xFF70:
		if c.cgbGame {
			c.wramBank = v & 0x07
		}
	default:
		// unmodeled register: write dropped
	}
}
