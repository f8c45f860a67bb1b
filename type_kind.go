package fiscal

import (
	"fmt"
	"strings"
)

// Kind is the direction of an operation.
type Kind int

const (
	Buy Kind = iota + 1
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown operation type %q, must be 'buy' or 'sell'", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != Buy && k != Sell {
		return nil, fmt.Errorf("invalid operation type %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
