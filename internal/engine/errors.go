package engine

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrSoldOut         = errors.New("sold out")
	ErrEventEnded      = errors.New("event ended")
	ErrAlreadyReserved = errors.New("already reserved")
)
