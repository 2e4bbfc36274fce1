// Package simpleserial dispatches SimpleSerial commands on the target.
package simpleserial

// The capture board sends one CT packet per frame. The Dispatcher decodes
// it, answers the built-in version ('v') and list ('w') queries itself and
// otherwise runs every registered handler for the command byte in
// registration order. Each handler may reply with a TC packet; the frame
// is closed with an 'e' packet carrying the status byte.
//
// Frames which fail to decode produce no reply at all, the capture side is
// expected to resend.
//
// Producer: capture board
// Consumer: target firmware
