package generator

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// no 0/O or 1/I so codes can be read out at the door
	ticketAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	ticketCodeLen  = 8
)

func pick(set string, length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(set)))

	for i := range result {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = set[idx.Int64()]
	}

	return string(result), nil
}

func GenerateRandomID(length int) (string, error) {
	return pick(alphabet, length)
}

// TicketCode returns a short code like "GG-7KQ2M9XD" printed on a booking.
func TicketCode() (string, error) {
	code, err := pick(ticketAlphabet, ticketCodeLen)
	if err != nil {
		return "", err
	}
	return "GG-" + code, nil
}
