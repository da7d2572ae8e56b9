package chain

import (
	"context"
	"fmt"
	"log"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/polygon"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/services/chain/zora"
)

// Factory implements AdapterFactory.
type Factory struct{}

// NewFactory creates a new platform adapter factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateAdapter creates an adapter for the given platform and config.
func (f *Factory) CreateAdapter(ctx context.Context, platform Platform, config interface{}) (PlatformAdapter, error) {
	switch platform {
	case PlatformPolygon:
		polygonConfig, ok := config.(*polygon.Config)
		if !ok {
			return nil, fmt.Errorf("invalid polygon config type, expected *polygon.Config")
		}
		return NewPolygonAdapter(ctx, polygonConfig)

	case PlatformZora:
		zoraConfig, ok := config.(*zora.Config)
		if !ok {
			return nil, fmt.Errorf("invalid zora config type, expected *zora.Config")
		}
		return NewZoraAdapter(ctx, zoraConfig)

	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

// GetSupportedPlatforms returns the platforms this factory can build.
func (f *Factory) GetSupportedPlatforms() []Platform {
	return []Platform{
		PlatformPolygon,
		PlatformZora,
	}
}

// Registry holds the live adapter per platform. The lifecycle service
// dispatches through it and never branches on platform identity itself.
type Registry struct {
	adapters map[Platform]PlatformAdapter
	factory  AdapterFactory
	primary  Platform
}

// NewRegistry creates an empty adapter registry.
func NewRegistry(factory AdapterFactory) *Registry {
	return &Registry{
		adapters: make(map[Platform]PlatformAdapter),
		factory:  factory,
	}
}

// Register creates and stores an adapter for the platform.
func (r *Registry) Register(ctx context.Context, platform Platform, config interface{}) error {
	adapter, err := r.factory.CreateAdapter(ctx, platform, config)
	if err != nil {
		return fmt.Errorf("failed to create %s adapter: %w", platform, err)
	}

	r.adapters[platform] = adapter

	// First registered platform becomes the default.
	if r.primary == "" {
		r.primary = platform
	}

	return nil
}

// RegisterAdapter stores an already constructed adapter. Used by tests
// and by callers that build adapters outside the factory.
func (r *Registry) RegisterAdapter(adapter PlatformAdapter) {
	r.adapters[adapter.GetPlatform()] = adapter
	if r.primary == "" {
		r.primary = adapter.GetPlatform()
	}
}

// Get returns the adapter registered for the platform.
func (r *Registry) Get(platform Platform) (PlatformAdapter, error) {
	adapter, exists := r.adapters[platform]
	if !exists {
		return nil, fmt.Errorf("platform %s not registered", platform)
	}
	return adapter, nil
}

// Primary returns the default platform adapter.
func (r *Registry) Primary() (PlatformAdapter, error) {
	if r.primary == "" {
		return nil, fmt.Errorf("no primary platform configured")
	}
	return r.Get(r.primary)
}

// SetPrimary sets the default platform.
func (r *Registry) SetPrimary(platform Platform) error {
	if _, exists := r.adapters[platform]; !exists {
		return fmt.Errorf("platform %s not registered", platform)
	}
	r.primary = platform
	return nil
}

// Platforms returns the registered platforms.
func (r *Registry) Platforms() []Platform {
	platforms := make([]Platform, 0, len(r.adapters))
	for platform := range r.adapters {
		platforms = append(platforms, platform)
	}
	return platforms
}

// Close gracefully closes all registered adapters.
func (r *Registry) Close(ctx context.Context) error {
	for platform, adapter := range r.adapters {
		if err := adapter.Close(ctx); err != nil {
			// Keep closing the rest.
			log.Printf("Error closing %s adapter: %v", platform, err)
		}
	}
	return nil
}
