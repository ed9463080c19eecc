package geotable

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddr converts dotted-quad notation into a 32-bit integer.
//
// It is lenient: it requires exactly 4 components and each
// of them has to be an unsigned integer, but there is no check that a
// component fits into a byte. Each component is weighted as
// component << (24 - 8*index) and summed, so 1.2.3.300 silently spills
// into a neighbour octet. If you get addresses from humans, please use
// ParseAddrStrict.
func ParseAddr(text string) (uint32, error) {
	parts := strings.Split(text, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: expected 4 components, got %d", ErrInvalidFormat, len(parts))
	}

	var rv uint32

	for i, v := range parts {
		component, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}

		rv += uint32(component) << uint(24-8*i)
	}

	return rv, nil
}

// ParseAddrStrict is ParseAddr with a check that each component consists
// of digits only and is within [0, 255].
func ParseAddrStrict(text string) (uint32, error) {
	parts := strings.Split(text, ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: expected 4 components, got %d", ErrInvalidFormat, len(parts))
	}

	for _, v := range parts {
		if v == "" || strings.TrimLeft(v, "0123456789") != "" {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, v)
		}

		if num, err := strconv.Atoi(v); err != nil || num > 255 {
			return 0, fmt.Errorf("%w: %q is out of byte range", ErrInvalidFormat, v)
		}
	}

	return ParseAddr(text)
}

// AddrOctets splits an integer address into 4 octets, most significant
// first.
func AddrOctets(addr uint32) [4]byte {
	return [4]byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// FormatAddr converts an integer address back to dotted-quad notation.
func FormatAddr(addr uint32) string {
	octets := AddrOctets(addr)
	builder := strings.Builder{}

	builder.Grow(15)

	for i, v := range octets {
		if i > 0 {
			builder.WriteByte('.')
		}

		builder.WriteString(strconv.Itoa(int(v)))
	}

	return builder.String()
}
