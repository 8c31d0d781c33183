package app

import (
	"fmt"

	"github.com/VladimirMonin/students-api-411/internal/store"
)

type Service struct {
	Config *Config
	Store  store.RecordStore
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	recordStore, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config, recordStore)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  recordStore,
		Auth:   auth,
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
