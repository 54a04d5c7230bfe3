package food

import "errors"

var (
	ErrFoodNotFound    = errors.New("food not found")
	ErrDuplicateFood   = errors.New("duplicate food id")
	ErrInvalidRecord   = errors.New("invalid food record")
	ErrEmptyCatalog    = errors.New("catalog has no records")
	ErrUnknownCategory = errors.New("unknown food category")
)
