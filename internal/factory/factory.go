package factory

import (
	"fmt"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/config"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/repository"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/storage"
)

// SourceType represents the photo source backends
type SourceType string

const (
	// AzureSource enumerates photos from an Azure blob container
	AzureSource SourceType = "azure"
	// LocalSource enumerates photos from a local directory tree
	LocalSource SourceType = "local"
	// HTTPSource enumerates photos from a remote manifest endpoint
	HTTPSource SourceType = "http"
)

// EnumeratorFactory creates photo enumerators
type EnumeratorFactory interface {
	CreateEnumerator(cfg *config.Config) (storage.PhotoEnumerator, error)
}

// ProofStoreFactory creates durable proof stores
type ProofStoreFactory interface {
	CreateProofStore(cfg *config.Config) (repository.ProofStore, error)
}

type enumeratorFactory struct{}

// NewEnumeratorFactory creates a new enumerator factory
func NewEnumeratorFactory() EnumeratorFactory {
	return &enumeratorFactory{}
}

// CreateEnumerator builds the photo enumerator selected by PHOTO_SOURCE.
func (f *enumeratorFactory) CreateEnumerator(cfg *config.Config) (storage.PhotoEnumerator, error) {
	switch SourceType(cfg.PhotoSource) {
	case AzureSource:
		return storage.NewAzureEnumerator(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	case LocalSource:
		return storage.NewLocalEnumerator(cfg.LocalPhotoRoot)
	case HTTPSource:
		return storage.NewHTTPEnumerator(cfg.ManifestBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported photo source: %s", cfg.PhotoSource)
	}
}

type proofStoreFactory struct{}

// NewProofStoreFactory creates a new proof store factory
func NewProofStoreFactory() ProofStoreFactory {
	return &proofStoreFactory{}
}

// CreateProofStore builds the MySQL-backed store when a DSN is configured and
// falls back to the in-memory store otherwise.
func (f *proofStoreFactory) CreateProofStore(cfg *config.Config) (repository.ProofStore, error) {
	if cfg.MySQLDSN != "" {
		return repository.NewMySQLProofStore(cfg.MySQLDSN)
	}
	return repository.NewMemoryProofStore(), nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	EnumeratorFactory EnumeratorFactory
	ProofStoreFactory ProofStoreFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		EnumeratorFactory: NewEnumeratorFactory(),
		ProofStoreFactory: NewProofStoreFactory(),
	}
}
