package systems

import (
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

// ShaderProvider exposes the programs a backend compiled.
type ShaderProvider interface {
	ShaderPrograms() []metadata.ShaderProgram
}

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]uint32
	// A collection of registered programs.
	Shaders []*metadata.ShaderProgram

	materials      map[uint32]*metadata.Material
	nextMaterialID uint32
}

func NewShaderSystem(config *ShaderSystemConfig) (*ShaderSystem, error) {
	if config == nil || config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:    config,
		Lookup:    make(map[string]uint32),
		Shaders:   make([]*metadata.ShaderProgram, 0, config.MaxShaderCount),
		materials: make(map[uint32]*metadata.Material),
	}, nil
}

// Register makes a compiled program available by name.
func (ss *ShaderSystem) Register(program metadata.ShaderProgram) error {
	if program.Name == "" {
		return fmt.Errorf("shader program name is required")
	}
	if program.PassCount < 1 {
		return fmt.Errorf("shader program '%s' must have at least one pass", program.Name)
	}
	if _, ok := ss.Lookup[program.Name]; ok {
		return fmt.Errorf("shader program '%s' is already registered", program.Name)
	}
	if len(ss.Shaders) >= int(ss.Config.MaxShaderCount) {
		return fmt.Errorf("unable to register shader '%s': max shader count %d reached", program.Name, ss.Config.MaxShaderCount)
	}
	id := uint32(len(ss.Shaders))
	program.ID = id
	ss.Shaders = append(ss.Shaders, &program)
	ss.Lookup[program.Name] = id
	core.LogDebug("registered shader program '%s' (%d passes)", program.Name, program.PassCount)
	return nil
}

// RegisterAll registers every program of the provider.
func (ss *ShaderSystem) RegisterAll(provider ShaderProvider) error {
	for _, p := range provider.ShaderPrograms() {
		if err := ss.Register(p); err != nil {
			return err
		}
	}
	return nil
}

func (ss *ShaderSystem) Get(name string) (*metadata.ShaderProgram, error) {
	id, ok := ss.Lookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrShaderNotFound, name)
	}
	return ss.Shaders[id], nil
}

// CreateEngineMaterial creates a material for the named program. A missing
// program is reported with core.ErrShaderNotFound.
func (ss *ShaderSystem) CreateEngineMaterial(shaderName string) (*metadata.Material, error) {
	shader, err := ss.Get(shaderName)
	if err != nil {
		return nil, err
	}
	m := metadata.NewMaterial(ss.nextMaterialID, shader)
	ss.materials[m.ID] = m
	ss.nextMaterialID++
	return m, nil
}

// DestroyMaterial invalidates the material. Passes holding it become unusable.
func (ss *ShaderSystem) DestroyMaterial(material *metadata.Material) {
	if material == nil || material.ID == metadata.InvalidID {
		return
	}
	delete(ss.materials, material.ID)
	material.ID = metadata.InvalidID
	material.Generation++
}

// MaterialCount returns the number of live materials.
func (ss *ShaderSystem) MaterialCount() int {
	return len(ss.materials)
}

func (ss *ShaderSystem) Shutdown() error {
	for _, m := range ss.materials {
		ss.DestroyMaterial(m)
	}
	ss.Shaders = ss.Shaders[:0]
	clear(ss.Lookup)
	return nil
}
