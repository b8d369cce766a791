package cc2538

// crc16 calculates the checksum carried by bridge frames.
//
// Bit-reflected CRC-16 with polynomial 0x8005, computed over every frame
// byte before the checksum itself. The bridge stub runs the same loop.
func crc16(data []byte) uint16 {
	var polynom uint16 = 0x8005
	var crc uint16

	for _, b := range data {
		for j := 0; j < 8; j++ {
			var dataBit byte
			if b&(1<<j) != 0 {
				dataBit = 1
			}
			crcBit := byte(crc >> 15)
			crc = crc << 1
			if dataBit != crcBit {
				crc = crc ^ polynom
			}
		}
	}

	return crc
}
