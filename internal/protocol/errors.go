package protocol

import "errors"

var (
	ErrTooShort        = errors.New("protocol: frame shorter than request header")
	ErrBadMagic        = errors.New("protocol: invalid magic")
	ErrTruncated       = errors.New("protocol: payload truncated")
	ErrPayloadTooLarge = errors.New("protocol: payload exceeds single-frame cap")
)
