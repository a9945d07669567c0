package renderer

import (
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

type CommandType int

const (
	CommandTypeGetTemporaryRT CommandType = iota
	CommandTypeReleaseTemporaryRT
	CommandTypeBlit
	CommandTypeBeginSample
	CommandTypeEndSample
)

func (t CommandType) String() string {
	switch t {
	case CommandTypeGetTemporaryRT:
		return "get-temporary-rt"
	case CommandTypeReleaseTemporaryRT:
		return "release-temporary-rt"
	case CommandTypeBlit:
		return "blit"
	case CommandTypeBeginSample:
		return "begin-sample"
	case CommandTypeEndSample:
		return "end-sample"
	}
	return fmt.Sprintf("CommandType(%d)", int(t))
}

// CopyPass is the shader pass index of a blit that copies without a material.
const CopyPass = -1

// Command is a single recorded operation. Only the fields relevant to Type
// are set.
type Command struct {
	Type        CommandType
	Source      metadata.RenderTargetIdentifier
	Destination metadata.RenderTargetIdentifier
	Material    *metadata.Material
	ShaderPass  int
	Property    core.Property
	Descriptor  metadata.RenderTextureDescriptor
	FilterMode  metadata.FilterMode
	Tag         string
}

// CommandBuffer records commands for later submission by a RenderContext.
// It is not safe for concurrent use.
type CommandBuffer struct {
	Name     string
	commands []Command
}

func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{
		Name:     name,
		commands: make([]Command, 0, 8),
	}
}

// GetTemporaryRT records the allocation of a temporary buffer so the backend
// can prepare it.
func (cb *CommandBuffer) GetTemporaryRT(handle *metadata.TemporaryResourceHandle) {
	if handle == nil {
		return
	}
	cb.commands = append(cb.commands, Command{
		Type:        CommandTypeGetTemporaryRT,
		Destination: handle.Identifier(),
		Property:    handle.Property,
		Descriptor:  handle.Descriptor,
		FilterMode:  handle.FilterMode,
	})
}

func (cb *CommandBuffer) ReleaseTemporaryRT(p core.Property) {
	cb.commands = append(cb.commands, Command{
		Type:     CommandTypeReleaseTemporaryRT,
		Property: p,
	})
}

// Blit records a full screen copy from src into dst. With a material the
// given sub-program transforms the pixels, without one (pass == CopyPass)
// the source is copied unmodified.
func (cb *CommandBuffer) Blit(src, dst metadata.RenderTargetIdentifier, material *metadata.Material, pass int) error {
	if !src.IsValid() {
		return fmt.Errorf("blit source %s is not a valid render target", src)
	}
	if !dst.IsValid() {
		return fmt.Errorf("blit destination %s is not a valid render target", dst)
	}
	if material != nil {
		if !material.IsValid() {
			return fmt.Errorf("blit material '%s' is not valid", material.Name)
		}
		if !material.Shader.HasPass(pass) {
			return fmt.Errorf("shader '%s' has no pass %d (pass count %d)", material.Shader.Name, pass, material.Shader.PassCount)
		}
	} else {
		pass = CopyPass
	}
	cb.commands = append(cb.commands, Command{
		Type:        CommandTypeBlit,
		Source:      src,
		Destination: dst,
		Material:    material,
		ShaderPass:  pass,
	})
	return nil
}

func (cb *CommandBuffer) BeginSample(tag string) {
	cb.commands = append(cb.commands, Command{Type: CommandTypeBeginSample, Tag: tag})
}

func (cb *CommandBuffer) EndSample(tag string) {
	cb.commands = append(cb.commands, Command{Type: CommandTypeEndSample, Tag: tag})
}

// Commands returns a copy of the recorded commands.
func (cb *CommandBuffer) Commands() []Command {
	out := make([]Command, len(cb.commands))
	copy(out, cb.commands)
	return out
}

func (cb *CommandBuffer) Len() int {
	return len(cb.commands)
}

func (cb *CommandBuffer) Clear() {
	cb.commands = cb.commands[:0]
}
