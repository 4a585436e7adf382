package gamequery

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddress разбирает host[:port]. port == 0 - порт не указан,
// берётся порт игры по умолчанию. Всё после второго ':' отбрасывается.
func ParseAddress(address string) (string, int, error) {
	parts := strings.Split(strings.TrimSpace(address), ":")
	host := parts[0]
	if host == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if len(parts) < 2 || parts[1] == "" {
		return host, 0, nil
	}
	rawPort := parts[1]
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, rawPort)
	}
	return host, port, nil
}
