package packet

// CTPacket is sent from the capture board to the target.
type CTPacket struct {
	Cmd    byte
	SubCmd byte
	Dlen   byte
	Data   [MaxDataLen]byte
}

// NewCT builds a CTPacket, data beyond MaxDataLen is dropped.
func NewCT(cmd, subCmd byte, data []byte) *CTPacket {
	pkt := &CTPacket{Cmd: cmd, SubCmd: subCmd}
	pkt.Dlen = byte(copy(pkt.Data[:], data))
	return pkt
}

// MetadataLen implements Packet.
func (p *CTPacket) MetadataLen() int { return 3 }

// DataLenOffset implements Packet.
func (p *CTPacket) DataLenOffset() int { return 2 }

// DataLen implements Packet.
func (p *CTPacket) DataLen() int { return int(p.Dlen) }

// Payload implements Packet.
func (p *CTPacket) Payload() []byte { return p.Data[:clampLen(p.Dlen)] }

// PutMetadata implements Packet.
func (p *CTPacket) PutMetadata(buf []byte) {
	buf[0], buf[1], buf[2] = p.Cmd, p.SubCmd, p.Dlen
}

// Load implements Packet.
func (p *CTPacket) Load(unstuffed []byte) {
	p.Cmd, p.SubCmd, p.Dlen = unstuffed[0], unstuffed[1], unstuffed[2]
	p.Data = [MaxDataLen]byte{}
	copy(p.Data[:], unstuffed[3:3+int(p.Dlen)])
}

func clampLen(dlen byte) int {
	if n := int(dlen); n < MaxDataLen {
		return n
	}
	return MaxDataLen
}
