package settings

import (
	"context"
	"errors"

	"github.com/PabloPavan/sniply_inject/internal/apperrors"
)

type HeaderFooter struct {
	Header string `json:"header_code"`
	Footer string `json:"footer_code"`
}

type Service struct {
	Store Store
}

// get treats a missing setting as empty.
func (s *Service) get(ctx context.Context, key string) (string, error) {
	v, err := s.Store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *Service) HeaderFooter(ctx context.Context) (HeaderFooter, error) {
	if s.Store == nil {
		return HeaderFooter{}, apperrors.New(apperrors.KindInternal, "settings store not configured")
	}
	header, err := s.get(ctx, KeyHeaderCode)
	if err != nil {
		return HeaderFooter{}, apperrors.Wrap(apperrors.KindInternal, "failed to load header code", err)
	}
	footer, err := s.get(ctx, KeyFooterCode)
	if err != nil {
		return HeaderFooter{}, apperrors.Wrap(apperrors.KindInternal, "failed to load footer code", err)
	}
	return HeaderFooter{Header: header, Footer: footer}, nil
}

func (s *Service) SaveHeaderFooter(ctx context.Context, hf HeaderFooter) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "settings store not configured")
	}
	if err := s.Store.Set(ctx, KeyHeaderCode, hf.Header); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to save header code", err)
	}
	if err := s.Store.Set(ctx, KeyFooterCode, hf.Footer); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to save footer code", err)
	}
	return nil
}
