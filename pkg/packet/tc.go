package packet

// TCPacket is sent from the target to the capture board.
type TCPacket struct {
	Cmd  byte
	Dlen byte
	Data [MaxDataLen]byte
}

// NewTC builds a TCPacket, data beyond MaxDataLen is dropped.
func NewTC(cmd byte, data []byte) *TCPacket {
	pkt := &TCPacket{Cmd: cmd}
	pkt.Dlen = byte(copy(pkt.Data[:], data))
	return pkt
}

// MetadataLen implements Packet.
func (p *TCPacket) MetadataLen() int { return 2 }

// DataLenOffset implements Packet.
func (p *TCPacket) DataLenOffset() int { return 1 }

// DataLen implements Packet.
func (p *TCPacket) DataLen() int { return int(p.Dlen) }

// Payload implements Packet.
func (p *TCPacket) Payload() []byte { return p.Data[:clampLen(p.Dlen)] }

// PutMetadata implements Packet.
func (p *TCPacket) PutMetadata(buf []byte) {
	buf[0], buf[1] = p.Cmd, p.Dlen
}

// Load implements Packet.
func (p *TCPacket) Load(unstuffed []byte) {
	p.Cmd, p.Dlen = unstuffed[0], unstuffed[1]
	p.Data = [MaxDataLen]byte{}
	copy(p.Data[:], unstuffed[2:2+int(p.Dlen)])
}
