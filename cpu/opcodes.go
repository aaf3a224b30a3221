package cpu

// Instruction is one entry of the primary or CB-prefixed dispatch
// table. Cycle counts are not stored explicitly: every memory access
// ticks the bus as it happens, so timing falls out of Execute itself
// rather than a separate fixed count.
type Instruction struct {
	Name    string
	Execute func(c *CPU)
}

var instructionSet [256]Instruction

var r8Name = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var rpName = [4]string{"BC", "DE", "HL", "SP"}

// getR8 reads one of the eight 3-bit-encoded operands, index 6 being
// the byte at (HL).
func (c *CPU) getR8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.readByte(c.HL.Uint16())
	default:
		return c.A
	}
}

func (c *CPU) setR8(idx uint8, v uint8) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.writeByte(c.HL.Uint16(), v)
	default:
		c.A = v
	}
}

// getRP16/setRP16 address the four 16-bit pairs used by opcodes whose
// encoding groups on bits 4-5: BC, DE, HL, SP.
func (c *CPU) getRP16(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

func (c *CPU) setRP16(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.BC.SetUint16(v)
	case 1:
		c.DE.SetUint16(v)
	case 2:
		c.HL.SetUint16(v)
	default:
		c.SP = v
	}
}

func (c *CPU) popWord() uint16 {
	v := c.readWord(c.SP)
	c.SP += 2
	return v
}

func (c *CPU) pushWord(v uint16) {
	c.internalTick()
	c.SP--
	c.writeByte(c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(c.SP, uint8(v))
}

func (c *CPU) jr(cond bool) {
	offset := int8(c.fetch())
	if cond {
		c.internalTick()
		c.PC = uint16(int32(c.PC) + int32(offset))
	}
}

func (c *CPU) jp(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.internalTick()
		c.PC = addr
	}
}

func (c *CPU) call(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.pushWord(c.PC)
		c.PC = addr
	}
}

func (c *CPU) retUnconditional() {
	c.PC = c.popWord()
	c.internalTick()
}

func (c *CPU) rst(vector uint16) {
	c.pushWord(c.PC)
	c.PC = vector
}

func illegalInstruction(opcode uint8) Instruction {
	return Instruction{
		Name: "illegal",
		Execute: func(c *CPU) {
			// real hardware locks the bus permanently; no commercial
			// ROM executes these, so we simply treat it as a NOP.
		},
	}
}

func init() {
	for i := range instructionSet {
		instructionSet[i] = illegalInstruction(uint8(i))
	}

	buildLoadTable()
	buildALURegisterTable()
	buildIncDecRegisterTable()
	buildRotateShiftAccumulatorTable()
	buildRPGroupTable()
	buildBranchTable()
	buildMiscTable()
}

// buildLoadTable fills the 0x40-0x7F LD r,r' block, skipping 0x76
// (HALT, which occupies the slot where LD (HL),(HL) would be).
func buildLoadTable() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 + dst*8 + src
			if opcode == 0x76 {
				continue
			}
			d, s := dst, src
			instructionSet[opcode] = Instruction{
				Name: "LD " + r8Name[d] + "," + r8Name[s],
				Execute: func(c *CPU) {
					c.setR8(d, c.getR8(s))
				},
			}
		}
	}

	instructionSet[0x76] = Instruction{"HALT", func(c *CPU) {
		if !c.IME && c.hasPending() {
			c.mode = modeHaltBug
		} else if !c.IME {
			c.mode = modeHaltDI
		} else {
			c.mode = modeHalt
		}
	}}

	// LD r,d8
	for dst := uint8(0); dst < 8; dst++ {
		opcode := 0x06 + dst*8
		d := dst
		instructionSet[opcode] = Instruction{
			Name: "LD " + r8Name[d] + ",d8",
			Execute: func(c *CPU) {
				c.setR8(d, c.fetch())
			},
		}
	}
}

var aluNames = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

func (c *CPU) aluOp(op uint8, v uint8) {
	switch op {
	case 0:
		c.A = c.add8(c.A, v, false)
	case 1:
		c.A = c.add8(c.A, v, c.flagSet(FlagCarry))
	case 2:
		c.A = c.sub8(c.A, v, false)
	case 3:
		c.A = c.sub8(c.A, v, c.flagSet(FlagCarry))
	case 4:
		c.A = c.and8(c.A, v)
	case 5:
		c.A = c.xor8(c.A, v)
	case 6:
		c.A = c.or8(c.A, v)
	case 7:
		c.cp8(c.A, v)
	}
}

// buildALURegisterTable fills the 0x80-0xBF ALU-A,r block and the
// 0xC6-0xFE ALU-A,d8 block sharing the same eight operations.
func buildALURegisterTable() {
	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x80 + op*8 + src
			o, s := op, src
			instructionSet[opcode] = Instruction{
				Name: aluNames[o] + " A," + r8Name[s],
				Execute: func(c *CPU) {
					c.aluOp(o, c.getR8(s))
				},
			}
		}
		opcode := 0xC6 + op*8
		o := op
		instructionSet[opcode] = Instruction{
			Name: aluNames[o] + " A,d8",
			Execute: func(c *CPU) {
				c.aluOp(o, c.fetch())
			},
		}
	}
}

// buildIncDecRegisterTable fills INC r / DEC r at 0x04+8n / 0x05+8n.
func buildIncDecRegisterTable() {
	for r := uint8(0); r < 8; r++ {
		reg := r
		instructionSet[0x04+reg*8] = Instruction{"INC " + r8Name[reg], func(c *CPU) {
			c.setR8(reg, c.inc8(c.getR8(reg)))
		}}
		instructionSet[0x05+reg*8] = Instruction{"DEC " + r8Name[reg], func(c *CPU) {
			c.setR8(reg, c.dec8(c.getR8(reg)))
		}}
	}
}

func buildRotateShiftAccumulatorTable() {
	instructionSet[0x07] = Instruction{"RLCA", func(c *CPU) {
		c.A = c.rlc(c.A)
		c.setFlag(FlagZero, false)
	}}
	instructionSet[0x0F] = Instruction{"RRCA", func(c *CPU) {
		c.A = c.rrc(c.A)
		c.setFlag(FlagZero, false)
	}}
	instructionSet[0x17] = Instruction{"RLA", func(c *CPU) {
		c.A = c.rl(c.A)
		c.setFlag(FlagZero, false)
	}}
	instructionSet[0x1F] = Instruction{"RRA", func(c *CPU) {
		c.A = c.rr(c.A)
		c.setFlag(FlagZero, false)
	}}
}

// buildRPGroupTable fills the four-wide LD rr,d16 / INC rr / DEC rr /
// ADD HL,rr / PUSH rr / POP rr groups.
func buildRPGroupTable() {
	for i := uint8(0); i < 4; i++ {
		rp := i
		instructionSet[0x01+rp*0x10] = Instruction{"LD " + rpName[rp] + ",d16", func(c *CPU) {
			c.setRP16(rp, c.fetchWord())
		}}
		instructionSet[0x03+rp*0x10] = Instruction{"INC " + rpName[rp], func(c *CPU) {
			c.internalTick()
			c.setRP16(rp, c.getRP16(rp)+1)
		}}
		instructionSet[0x0B+rp*0x10] = Instruction{"DEC " + rpName[rp], func(c *CPU) {
			c.internalTick()
			c.setRP16(rp, c.getRP16(rp)-1)
		}}
		instructionSet[0x09+rp*0x10] = Instruction{"ADD HL," + rpName[rp], func(c *CPU) {
			c.internalTick()
			c.addHL(c.getRP16(rp))
		}}
	}

	pushPopName := [4]string{"BC", "DE", "HL", "AF"}
	pushPopGet := [4]func(c *CPU) uint16{
		func(c *CPU) uint16 { return c.BC.Uint16() },
		func(c *CPU) uint16 { return c.DE.Uint16() },
		func(c *CPU) uint16 { return c.HL.Uint16() },
		func(c *CPU) uint16 { return c.AF.Uint16() },
	}
	pushPopSet := [4]func(c *CPU, v uint16){
		func(c *CPU, v uint16) { c.BC.SetUint16(v) },
		func(c *CPU, v uint16) { c.DE.SetUint16(v) },
		func(c *CPU, v uint16) { c.HL.SetUint16(v) },
		func(c *CPU, v uint16) { c.AF.SetUint16(v & 0xFFF0) },
	}
	for i := uint8(0); i < 4; i++ {
		idx := i
		instructionSet[0xC5+idx*0x10] = Instruction{"PUSH " + pushPopName[idx], func(c *CPU) {
			c.pushWord(pushPopGet[idx](c))
		}}
		instructionSet[0xC1+idx*0x10] = Instruction{"POP " + pushPopName[idx], func(c *CPU) {
			pushPopSet[idx](c, c.popWord())
		}}
	}
}

// buildBranchTable fills the conditional JR/JP/CALL/RET quadruplets
// and RST vectors.
func buildBranchTable() {
	ccName := [4]string{"NZ", "Z", "NC", "C"}
	ccTest := [4]func(c *CPU) bool{
		func(c *CPU) bool { return !c.flagSet(FlagZero) },
		func(c *CPU) bool { return c.flagSet(FlagZero) },
		func(c *CPU) bool { return !c.flagSet(FlagCarry) },
		func(c *CPU) bool { return c.flagSet(FlagCarry) },
	}

	for i := uint8(0); i < 4; i++ {
		cc := i
		instructionSet[0x20+cc*8] = Instruction{"JR " + ccName[cc] + ",r8", func(c *CPU) {
			c.jr(ccTest[cc](c))
		}}
		instructionSet[0xC2+cc*8] = Instruction{"JP " + ccName[cc] + ",a16", func(c *CPU) {
			c.jp(ccTest[cc](c))
		}}
		instructionSet[0xC4+cc*8] = Instruction{"CALL " + ccName[cc] + ",a16", func(c *CPU) {
			c.call(ccTest[cc](c))
		}}
		instructionSet[0xC0+cc*8] = Instruction{"RET " + ccName[cc], func(c *CPU) {
			c.internalTick()
			if ccTest[cc](c) {
				c.PC = c.popWord()
				c.internalTick()
			}
		}}
	}

	instructionSet[0x18] = Instruction{"JR r8", func(c *CPU) { c.jr(true) }}
	instructionSet[0xC3] = Instruction{"JP a16", func(c *CPU) { c.jp(true) }}
	instructionSet[0xCD] = Instruction{"CALL a16", func(c *CPU) { c.call(true) }}
	instructionSet[0xC9] = Instruction{"RET", func(c *CPU) { c.retUnconditional() }}
	instructionSet[0xD9] = Instruction{"RETI", func(c *CPU) {
		c.retUnconditional()
		c.IME = true
	}}
	instructionSet[0xE9] = Instruction{"JP (HL)", func(c *CPU) {
		c.PC = c.HL.Uint16()
	}}

	for i := uint8(0); i < 8; i++ {
		vector := uint16(i) * 8
		instructionSet[0xC7+i*8] = Instruction{"RST", func(c *CPU) {
			c.rst(vector)
		}}
	}
}

// buildMiscTable fills the remaining irregular opcodes: NOP, STOP,
// DAA/CPL/SCF/CCF, the high-RAM and indirect loads, stack-pointer
// arithmetic, and DI/EI.
func buildMiscTable() {
	instructionSet[0x00] = Instruction{"NOP", func(c *CPU) {}}

	instructionSet[0x10] = Instruction{"STOP", func(c *CPU) {
		c.fetch() // STOP's second byte, conventionally 0x00
		if c.speedSwitch {
			c.doubleSpeed = !c.doubleSpeed
			c.speedSwitch = false
			return
		}
		c.mode = modeStop
	}}

	instructionSet[0x02] = Instruction{"LD (BC),A", func(c *CPU) { c.writeByte(c.BC.Uint16(), c.A) }}
	instructionSet[0x12] = Instruction{"LD (DE),A", func(c *CPU) { c.writeByte(c.DE.Uint16(), c.A) }}
	instructionSet[0x0A] = Instruction{"LD A,(BC)", func(c *CPU) { c.A = c.readByte(c.BC.Uint16()) }}
	instructionSet[0x1A] = Instruction{"LD A,(DE)", func(c *CPU) { c.A = c.readByte(c.DE.Uint16()) }}

	instructionSet[0x22] = Instruction{"LD (HL+),A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}}
	instructionSet[0x2A] = Instruction{"LD A,(HL+)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}}
	instructionSet[0x32] = Instruction{"LD (HL-),A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}}
	instructionSet[0x3A] = Instruction{"LD A,(HL-)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}}

	instructionSet[0x08] = Instruction{"LD (a16),SP", func(c *CPU) {
		addr := c.fetchWord()
		c.writeWord(addr, c.SP)
	}}

	instructionSet[0x27] = Instruction{"DAA", func(c *CPU) { c.daa() }}
	instructionSet[0x2F] = Instruction{"CPL", func(c *CPU) { c.cpl() }}
	instructionSet[0x37] = Instruction{"SCF", func(c *CPU) { c.scf() }}
	instructionSet[0x3F] = Instruction{"CCF", func(c *CPU) { c.ccf() }}

	instructionSet[0xE0] = Instruction{"LDH (a8),A", func(c *CPU) {
		addr := 0xFF00 + uint16(c.fetch())
		c.writeByte(addr, c.A)
	}}
	instructionSet[0xF0] = Instruction{"LDH A,(a8)", func(c *CPU) {
		addr := 0xFF00 + uint16(c.fetch())
		c.A = c.readByte(addr)
	}}
	instructionSet[0xE2] = Instruction{"LD (C),A", func(c *CPU) {
		c.writeByte(0xFF00+uint16(c.C), c.A)
	}}
	instructionSet[0xF2] = Instruction{"LD A,(C)", func(c *CPU) {
		c.A = c.readByte(0xFF00 + uint16(c.C))
	}}
	instructionSet[0xEA] = Instruction{"LD (a16),A", func(c *CPU) {
		c.writeByte(c.fetchWord(), c.A)
	}}
	instructionSet[0xFA] = Instruction{"LD A,(a16)", func(c *CPU) {
		c.A = c.readByte(c.fetchWord())
	}}

	instructionSet[0xE8] = Instruction{"ADD SP,r8", func(c *CPU) {
		offset := int8(c.fetch())
		c.internalTick()
		c.internalTick()
		c.SP = c.addSPSigned(offset)
	}}
	instructionSet[0xF8] = Instruction{"LD HL,SP+r8", func(c *CPU) {
		offset := int8(c.fetch())
		c.internalTick()
		c.HL.SetUint16(c.addSPSigned(offset))
	}}
	instructionSet[0xF9] = Instruction{"LD SP,HL", func(c *CPU) {
		c.internalTick()
		c.SP = c.HL.Uint16()
	}}

	instructionSet[0xF3] = Instruction{"DI", func(c *CPU) { c.IME = false }}
	instructionSet[0xFB] = Instruction{"EI", func(c *CPU) {
		if c.mode == modeNormal {
			c.mode = modeEnableIME
		}
	}}
}
