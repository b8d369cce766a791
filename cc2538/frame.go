package cc2538

import (
	"encoding/binary"
	"errors"
)

// Bridge frame opcodes.
const (
	bridgeOpReadReg  = 'r'
	bridgeOpWriteReg = 'w'
	bridgeOpWriteMem = 'm'
	bridgeOpReadMem  = 'g'
)

// Frame geometry. A request is size, opcode, four address bytes, the
// payload and two CRC bytes; a response is size, status, payload and two
// CRC bytes. The size byte counts the whole frame.
const (
	bridgeReqOverhead  = 8
	bridgeRespOverhead = 4
	bridgeMaxPayload   = 0xFF - bridgeReqOverhead
)

var (
	errFrameShort = errors.New("cc2538: short bridge response")
	errFrameCRC   = errors.New("cc2538: response crc mismatch")
)

// encodeFrame builds a request frame for op at addr.
func encodeFrame(op byte, addr uint32, payload []byte) ([]byte, error) {
	if len(payload) > bridgeMaxPayload {
		return nil, ErrDataTooLong
	}
	size := bridgeReqOverhead + len(payload)
	b := make([]byte, 0, size)
	b = append(b, byte(size))
	b = append(b, op)
	b = binary.LittleEndian.AppendUint32(b, addr)
	b = append(b, payload...)
	return binary.LittleEndian.AppendUint16(b, crc16(b)), nil
}

// parseFrame validates a response frame and returns its payload.
func parseFrame(buf []byte) ([]byte, error) {
	if len(buf) < bridgeRespOverhead {
		return nil, errFrameShort
	}
	size := int(buf[0])
	if size < bridgeRespOverhead || size > len(buf) {
		return nil, errFrameShort
	}
	body, crc := buf[:size-2], buf[size-2:size]
	if crc16(body) != binary.LittleEndian.Uint16(crc) {
		return nil, errFrameCRC
	}
	if err := validateBridgeStatus(body[1]); err != nil {
		return nil, err
	}
	return body[2:], nil
}
