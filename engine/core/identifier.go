package core

import "sync"

// Property is a stable shader property identifier. The set of properties is
// fixed at compile time so ids never need to be re-derived from names.
type Property uint16

const (
	PropertyTemporaryBuffer Property = iota
	PropertyBlurStrength
	PropertyCameraColor
	PropertyCameraDepth

	propertyCount
)

// InvalidProperty is returned by lookups that found nothing.
const InvalidProperty Property = 0xFFFF

var propertyNames = [propertyCount]string{
	PropertyTemporaryBuffer: "_TemporaryBuffer",
	PropertyBlurStrength:    "_BlurStrength",
	PropertyCameraColor:     "_CameraColorTexture",
	PropertyCameraDepth:     "_CameraDepthTexture",
}

var (
	onceProperties sync.Once
	propertyLookup map[string]Property
)

// Name returns the shader-side name of the property.
func (p Property) Name() string {
	if p >= propertyCount {
		return ""
	}
	return propertyNames[p]
}

func (p Property) String() string {
	if n := p.Name(); n != "" {
		return n
	}
	return "<invalid>"
}

// PropertyToID resolves a shader property name. The lookup table is built
// once and never modified afterwards.
func PropertyToID(name string) (Property, bool) {
	onceProperties.Do(func() {
		propertyLookup = make(map[string]Property, propertyCount)
		for i := Property(0); i < propertyCount; i++ {
			propertyLookup[propertyNames[i]] = i
		}
	})
	p, ok := propertyLookup[name]
	if !ok {
		return InvalidProperty, false
	}
	return p, true
}
