package cpu

var instructionSetCB [256]Instruction

var cbRotateOps = [8]struct {
	name string
	fn   func(c *CPU, v uint8) uint8
}{
	{"RLC", (*CPU).rlc},
	{"RRC", (*CPU).rrc},
	{"RL", (*CPU).rl},
	{"RR", (*CPU).rr},
	{"SLA", (*CPU).sla},
	{"SRA", (*CPU).sra},
	{"SWAP", (*CPU).swap},
	{"SRL", (*CPU).srl},
}

func init() {
	for op := uint8(0); op < 8; op++ {
		for r := uint8(0); r < 8; r++ {
			opcode := op*8 + r
			o, reg := op, r
			instructionSetCB[opcode] = Instruction{
				Name: cbRotateOps[o].name + " " + r8Name[reg],
				Execute: func(c *CPU) {
					c.setR8(reg, cbRotateOps[o].fn(c, c.getR8(reg)))
				},
			}
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		for r := uint8(0); r < 8; r++ {
			b, reg := bit, r

			instructionSetCB[0x40+b*8+reg] = Instruction{
				Name: "BIT " + string(rune('0'+b)) + "," + r8Name[reg],
				Execute: func(c *CPU) {
					c.bit(b, c.getR8(reg))
				},
			}
			instructionSetCB[0x80+b*8+reg] = Instruction{
				Name: "RES " + string(rune('0'+b)) + "," + r8Name[reg],
				Execute: func(c *CPU) {
					c.setR8(reg, res(b, c.getR8(reg)))
				},
			}
			instructionSetCB[0xC0+b*8+reg] = Instruction{
				Name: "SET " + string(rune('0'+b)) + "," + r8Name[reg],
				Execute: func(c *CPU) {
					c.setR8(reg, set(b, c.getR8(reg)))
				},
			}
		}
	}
}
