package systems

import (
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/renderer"
)

// Backend is everything the systems need from the host rendering backend.
type Backend interface {
	renderer.RendererBackend
	TextureAllocator
	ShaderProvider
}

type SystemManagerConfig struct {
	MaxShaderCount       uint16
	MaxPooledDescriptors int
}

type SystemManager struct {
	ShaderSystem            *ShaderSystem
	TemporaryResourceSystem *TemporaryResourceSystem
	RendererSystem          *RendererSystem
}

func NewSystemManager(config SystemManagerConfig, backend Backend) (*SystemManager, error) {
	if backend == nil {
		return nil, fmt.Errorf("func NewSystemManager - backend is required")
	}
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: config.MaxShaderCount,
	})
	if err != nil {
		return nil, err
	}
	if err := ss.RegisterAll(backend); err != nil {
		return nil, err
	}
	trs, err := NewTemporaryResourceSystem(TemporaryResourceSystemConfig{
		MaxPooledDescriptors: config.MaxPooledDescriptors,
	}, backend)
	if err != nil {
		return nil, err
	}
	rs, err := NewRendererSystem(backend, ss, trs)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		ShaderSystem:            ss,
		TemporaryResourceSystem: trs,
		RendererSystem:          rs,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TemporaryResourceSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
