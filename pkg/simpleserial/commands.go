package simpleserial

// Capture to target opcodes.
const (
	CmdSelectStack   byte = 'h'
	CmdSetKey        byte = 'k'
	CmdCipherMode    byte = 'm'
	CmdPlainText     byte = 'p'
	CmdAuthChallenge byte = 't'
	CmdVersion       byte = 'v'
	CmdListCommands  byte = 'w'
	CmdClearBuffers  byte = 'x'
)

// Target to capture opcodes.
const (
	ReplyResult byte = 'r'
	ReplyStatus byte = 'e'
	ReplyAck    byte = 'z'
)

// Version is the protocol version reported for CmdVersion.
const Version byte = 2
