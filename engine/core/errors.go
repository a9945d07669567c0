package core

import (
	"errors"
)

var (
	ErrNilCommandBuffer         = errors.New("command buffer is nil")
	ErrNilRenderingData         = errors.New("rendering data is nil")
	ErrShaderNotFound           = errors.New("shader program not found")
	ErrPassInactive             = errors.New("render pass is inactive")
	ErrInvalidPassState         = errors.New("invalid render pass state transition")
	ErrUnknownTemporaryResource = errors.New("temporary resource was not acquired in this frame")
	ErrInvalidDescriptor        = errors.New("invalid render texture descriptor")
	ErrInvalidSettings          = errors.New("invalid settings")
)
