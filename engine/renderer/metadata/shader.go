package metadata

import "github.com/spaghettifunk/screenfx/engine/core"

const (
	BUILTIN_SHADER_NAME_BOX_BLUR = "Hidden/Box Blur"
	BUILTIN_SHADER_NAME_DEPTH    = "ScreenSpace/Depth"
)

/**
 * @brief A compiled shader program as provided by the host. A program
 * contains one or more sub-programs selected by index when blitting.
 */
type ShaderProgram struct {
	/** @brief The shader identifier */
	ID   uint32
	Name string
	/** @brief Number of sub-programs. Blits address them by index. */
	PassCount int
	/** @brief Properties the program reads. */
	Properties []core.Property
}

// HasPass reports whether index addresses a sub-program of the shader.
func (s *ShaderProgram) HasPass(index int) bool {
	return s != nil && index >= 0 && index < s.PassCount
}

// Uses reports whether the program reads the given property.
func (s *ShaderProgram) Uses(p core.Property) bool {
	if s == nil {
		return false
	}
	for _, prop := range s.Properties {
		if prop == p {
			return true
		}
	}
	return false
}
