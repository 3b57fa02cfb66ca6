package bookings

import (
	"strings"

	"github.com/speps/go-hashids/v2"
)

// RefCodec turns numeric booking IDs into the short upper-case references
// guests see on invoices and that payment transaction references embed.
type RefCodec struct {
	h *hashids.HashID
}

func NewRefCodec(salt string) (*RefCodec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 6
	data.Alphabet = "abcdefghijklmnopqrstuvwxyz1234567890"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &RefCodec{h: h}, nil
}

func (c *RefCodec) Encode(id int64) (string, error) {
	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

func (c *RefCodec) Decode(ref string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(strings.ToLower(ref))
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}
