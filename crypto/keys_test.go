package crypto

import "testing"

func TestAddressStringRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := NewAddress(AccountPrefix, raw)

	encoded := addr.String()
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round-tripped address mismatch: got %x want %x", decoded.Bytes(), addr.Bytes())
	}
	if decoded.Prefix() != AccountPrefix {
		t.Fatalf("unexpected prefix: %s", decoded.Prefix())
	}
}

func TestAddressEqualIgnoresPrefix(t *testing.T) {
	raw := make([]byte, 20)
	raw[0] = 0x42
	a := NewAddress(AccountPrefix, raw)
	b := NewAddress(SecondaryPrefix, raw)
	if !a.Equal(b) {
		t.Fatalf("expected addresses with same bytes to be equal regardless of prefix")
	}
}

func TestDecodeAddressRejectsInvalidBech32(t *testing.T) {
	if _, err := DecodeAddress("not-a-valid-address"); err == nil {
		t.Fatalf("expected error decoding invalid bech32 string")
	}
}

func TestNewAddressPanicsOnWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-20-byte input")
		}
	}()
	NewAddress(AccountPrefix, []byte{0x01, 0x02})
}
