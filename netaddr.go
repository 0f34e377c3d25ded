package gcode

import "fmt"

// IPAddress is a dotted-quad literal (§4.5 "IP literal").
type IPAddress [4]byte

func (ip IPAddress) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// MACAddress is a six-group hex literal (§4.5 "MAC literal").
type MACAddress [6]byte

func (mac MACAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

// GetIPAddress parses an IP literal at the current read pointer: four
// unsigned groups, each <= 255, separated by exactly three '.' (§4.5).
func (b *Buffer) GetIPAddress() (IPAddress, error) {
	defer b.resetReadPointer()
	if err := b.requireActiveReadPointer(); err != nil {
		return IPAddress{}, err
	}
	b.readPointer++ // skip the parameter letter

	var ip IPAddress
	for i := 0; i < 4; i++ {
		n, ndigits := b.scanUnsignedDecimal()
		if ndigits == 0 || n > 255 {
			return IPAddress{}, newParseError(b.readPointer, "invalid IP address")
		}
		ip[i] = byte(n)
		if i < 3 {
			if b.readPointer >= b.commandEnd || b.buffer[b.readPointer] != '.' {
				return IPAddress{}, newParseError(b.readPointer, "invalid IP address")
			}
			b.readPointer++
		}
	}
	return ip, nil
}

// GetMACAddress parses a MAC literal: six hex groups, each <= 0xFF,
// separated by ':' (§4.5).
func (b *Buffer) GetMACAddress() (MACAddress, error) {
	defer b.resetReadPointer()
	if err := b.requireActiveReadPointer(); err != nil {
		return MACAddress{}, err
	}
	b.readPointer++ // skip the parameter letter

	var mac MACAddress
	for i := 0; i < 6; i++ {
		n, ndigits := b.scanUnsignedHex()
		if ndigits == 0 || n > 0xFF {
			return MACAddress{}, newParseError(b.readPointer, "invalid MAC address")
		}
		mac[i] = byte(n)
		if i < 5 {
			if b.readPointer >= b.commandEnd || b.buffer[b.readPointer] != ':' {
				return MACAddress{}, newParseError(b.readPointer, "invalid MAC address")
			}
			b.readPointer++
		}
	}
	return mac, nil
}

func (b *Buffer) scanUnsignedDecimal() (uint32, int) {
	var n uint32
	var count int
	for b.readPointer < b.commandEnd && isDigit(b.buffer[b.readPointer]) {
		n = n*10 + uint32(b.buffer[b.readPointer]-'0')
		b.readPointer++
		count++
	}
	return n, count
}

func (b *Buffer) scanUnsignedHex() (uint32, int) {
	var n uint32
	var count int
	for b.readPointer < b.commandEnd && isHexDigit(b.buffer[b.readPointer]) {
		n = n*16 + uint32(hexValue(b.buffer[b.readPointer]))
		b.readPointer++
		count++
	}
	return n, count
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
