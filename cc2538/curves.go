package cc2538

// CurveInfo holds the domain parameters of a short Weierstrass curve in
// the little-endian word form the PKA engine consumes.
type CurveInfo struct {
	Name  string
	Size  int // field size in 32-bit words
	Prime []uint32
	N     []uint32 // group order
	A     []uint32
	B     []uint32
	Gx    []uint32
	Gy    []uint32
}

// Point is an affine curve point, coordinates word 0 least significant.
type Point struct {
	X []uint32
	Y []uint32
}

// NewPoint returns a zero point sized for a curve of size words.
func NewPoint(size int) Point {
	return Point{X: make([]uint32, size), Y: make([]uint32, size)}
}

// BasePoint returns a copy of the curve generator.
func (c *CurveInfo) BasePoint() Point {
	p := NewPoint(c.Size)
	copy(p.X, c.Gx)
	copy(p.Y, c.Gy)
	return p
}

var nistP256 = &CurveInfo{
	Name: "NIST P-256",
	Size: 8,
	Prime: []uint32{
		0xffffffff, 0xffffffff, 0xffffffff, 0x00000000,
		0x00000000, 0x00000000, 0x00000001, 0xffffffff,
	},
	N: []uint32{
		0xfc632551, 0xf3b9cac2, 0xa7179e84, 0xbce6faad,
		0xffffffff, 0xffffffff, 0x00000000, 0xffffffff,
	},
	A: []uint32{
		0xfffffffc, 0xffffffff, 0xffffffff, 0x00000000,
		0x00000000, 0x00000000, 0x00000001, 0xffffffff,
	},
	B: []uint32{
		0x27d2604b, 0x3bce3c3e, 0xcc53b0f6, 0x651d06b0,
		0x769886bc, 0xb3ebbd55, 0xaa3a93e7, 0x5ac635d8,
	},
	Gx: []uint32{
		0xd898c296, 0xf4a13945, 0x2deb33a0, 0x77037d81,
		0x63a440f2, 0xf8bce6e5, 0xe12c4247, 0x6b17d1f2,
	},
	Gy: []uint32{
		0x37bf51f5, 0xcbb64068, 0x6b315ece, 0x2bce3357,
		0x7c0f9e16, 0x8ee7eb4a, 0xfe1a7f9b, 0x4fe342e2,
	},
}

var nistP192 = &CurveInfo{
	Name: "NIST P-192",
	Size: 6,
	Prime: []uint32{
		0xffffffff, 0xffffffff, 0xfffffffe, 0xffffffff,
		0xffffffff, 0xffffffff,
	},
	N: []uint32{
		0xb4d22831, 0x146bc9b1, 0x99def836, 0xffffffff,
		0xffffffff, 0xffffffff,
	},
	A: []uint32{
		0xfffffffc, 0xffffffff, 0xfffffffe, 0xffffffff,
		0xffffffff, 0xffffffff,
	},
	B: []uint32{
		0xc146b9b1, 0xfeb8deec, 0x72243049, 0x0fa7e9ab,
		0xe59c80e7, 0x64210519,
	},
	Gx: []uint32{
		0x82ff1012, 0xf4ff0afd, 0x43a18800, 0x7cbf20eb,
		0xb03090f6, 0x188da80e,
	},
	Gy: []uint32{
		0x1e794811, 0x73f977a1, 0x6b24cdd5, 0x631011ed,
		0xffc8da78, 0x07192b95,
	},
}

// P256 returns the NIST P-256 parameters.
func P256() *CurveInfo { return nistP256 }

// P192 returns the NIST P-192 parameters.
func P192() *CurveInfo { return nistP192 }
