package metadata

import (
	"github.com/spaghettifunk/screenfx/engine/core"
)

/**
 * @brief A shader program plus the parameter values bound to it.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material Name. */
	Name string
	/** @brief The material Generation. Incremented every time the material is recreated. */
	Generation uint32
	Shader     *ShaderProgram

	ints map[core.Property]int32
}

func NewMaterial(id uint32, shader *ShaderProgram) *Material {
	return &Material{
		ID:     id,
		Name:   shader.Name,
		Shader: shader,
		ints:   make(map[core.Property]int32),
	}
}

func (m *Material) SetInt(p core.Property, value int32) {
	if m == nil {
		return
	}
	if m.ints == nil {
		m.ints = make(map[core.Property]int32)
	}
	m.ints[p] = value
}

// GetInt returns the bound value or 0 when the property was never set.
func (m *Material) GetInt(p core.Property) int32 {
	if m == nil {
		return 0
	}
	return m.ints[p]
}

func (m *Material) HasInt(p core.Property) bool {
	if m == nil {
		return false
	}
	_, ok := m.ints[p]
	return ok
}

// IsValid reports whether the material still points at a program.
func (m *Material) IsValid() bool {
	return m != nil && m.Shader != nil && m.ID != InvalidID
}
