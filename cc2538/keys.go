package cc2538

// KeySize selects the width of the keys held in the key store. The
// values carry the hardware encoding of the key-store size register.
type KeySize uint32

const (
	Key128 KeySize = 0b01
	Key192 KeySize = 0b10
	Key256 KeySize = 0b11
)

// Bytes returns the key length in bytes, or 0 for an invalid size.
func (s KeySize) Bytes() int {
	switch s {
	case Key128:
		return 16
	case Key192:
		return 24
	case Key256:
		return 32
	}
	return 0
}

func (s KeySize) String() string {
	switch s {
	case Key128:
		return "AES-128"
	case Key192:
		return "AES-192"
	case Key256:
		return "AES-256"
	}
	return "invalid key size"
}

// KeyMaterial is a slot-aligned image of one or more raw AES keys,
// ready to stream into the hardware key store. The key RAM holds eight
// 128-bit slots; 192- and 256-bit keys take two slots each, with
// 192-bit keys zero-padded up to the slot boundary.
//
// The key store holds keys of a single size at a time, so one
// KeyMaterial carries one size.
type KeyMaterial struct {
	keys  [128]byte
	size  KeySize
	count uint8 // slots used
	start uint8 // first slot
}

// NewKeyMaterial packs keys into consecutive key-store slots starting
// at startSlot. Every key must be size bytes long.
func NewKeyMaterial(size KeySize, startSlot uint8, keys ...[]byte) (*KeyMaterial, error) {
	if size.Bytes() == 0 {
		return nil, ErrKeySize
	}
	if len(keys) == 0 {
		return nil, ErrEmptyInput
	}
	km := &KeyMaterial{size: size, start: startSlot}
	for _, k := range keys {
		if len(k) != size.Bytes() {
			return nil, ErrKeySize
		}
		slots := uint8(1)
		if size != Key128 {
			slots = 2
		}
		if int(startSlot)+int(km.count)+int(slots) > 8 {
			return nil, ErrKeySlots
		}
		copy(km.keys[int(km.count)*16:], k)
		km.count += slots
	}
	return km, nil
}

// Size returns the key size the material was packed for.
func (km *KeyMaterial) Size() KeySize { return km.size }

// Slots returns the key-store slots the material occupies as a bitmask.
func (km *KeyMaterial) Slots() uint32 {
	return ((1 << km.count) - 1) << km.start
}

// packed returns the slot image to stream into the key store.
func (km *KeyMaterial) packed() []byte {
	return km.keys[:int(km.count)*16]
}
