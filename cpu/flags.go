package cpu

// Flag bit positions within the F register.
type Flag = uint8

const (
	FlagZero      Flag = 0x80
	FlagSubtract  Flag = 0x40
	FlagHalfCarry Flag = 0x20
	FlagCarry     Flag = 0x10
)

// setFlag sets or clears flag according to on, always keeping the
// unused low nibble of F at zero.
func (c *CPU) setFlag(flag Flag, on bool) {
	if on {
		c.F |= flag
	} else {
		c.F &^= flag
	}
	c.F &= 0xF0
}

func (c *CPU) flagSet(flag Flag) bool {
	return c.F&flag != 0
}

// setZSHC is the common case: Zero from the result, Subtract fixed,
// Half-carry and Carry from the caller.
func (c *CPU) setZSHC(result uint8, subtract, half, carry bool) {
	c.setFlag(FlagZero, result == 0)
	c.setFlag(FlagSubtract, subtract)
	c.setFlag(FlagHalfCarry, half)
	c.setFlag(FlagCarry, carry)
}
