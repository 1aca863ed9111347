package settings

import (
	"context"
	"errors"
)

const (
	KeyHeaderCode = "header_code"
	KeyFooterCode = "footer_code"
)

var ErrNotFound = errors.New("setting not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
