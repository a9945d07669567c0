package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

/**
 * @brief Injection point of a render pass. Passes run in ascending order of
 * their event; the gaps leave room for offsets such as
 * RenderPassEventAfterRenderingOpaques+1.
 */
type RenderPassEvent int

const (
	RenderPassEventBeforeRendering               RenderPassEvent = 0
	RenderPassEventBeforeRenderingShadows        RenderPassEvent = 50
	RenderPassEventAfterRenderingShadows         RenderPassEvent = 100
	RenderPassEventBeforeRenderingPrePasses      RenderPassEvent = 150
	RenderPassEventAfterRenderingPrePasses       RenderPassEvent = 200
	RenderPassEventBeforeRenderingGbuffer        RenderPassEvent = 210
	RenderPassEventAfterRenderingGbuffer         RenderPassEvent = 220
	RenderPassEventBeforeRenderingDeferredLights RenderPassEvent = 230
	RenderPassEventAfterRenderingDeferredLights  RenderPassEvent = 240
	RenderPassEventBeforeRenderingOpaques        RenderPassEvent = 250
	RenderPassEventAfterRenderingOpaques         RenderPassEvent = 300
	RenderPassEventBeforeRenderingSkybox         RenderPassEvent = 350
	RenderPassEventAfterRenderingSkybox          RenderPassEvent = 400
	RenderPassEventBeforeRenderingTransparents   RenderPassEvent = 450
	RenderPassEventAfterRenderingTransparents    RenderPassEvent = 500
	RenderPassEventBeforeRenderingPostProcessing RenderPassEvent = 550
	RenderPassEventAfterRenderingPostProcessing  RenderPassEvent = 600
	RenderPassEventAfterRendering                RenderPassEvent = 1000
)

var renderPassEventNames = []struct {
	event RenderPassEvent
	name  string
}{
	{RenderPassEventBeforeRendering, "BeforeRendering"},
	{RenderPassEventBeforeRenderingShadows, "BeforeRenderingShadows"},
	{RenderPassEventAfterRenderingShadows, "AfterRenderingShadows"},
	{RenderPassEventBeforeRenderingPrePasses, "BeforeRenderingPrePasses"},
	{RenderPassEventAfterRenderingPrePasses, "AfterRenderingPrePasses"},
	{RenderPassEventBeforeRenderingGbuffer, "BeforeRenderingGbuffer"},
	{RenderPassEventAfterRenderingGbuffer, "AfterRenderingGbuffer"},
	{RenderPassEventBeforeRenderingDeferredLights, "BeforeRenderingDeferredLights"},
	{RenderPassEventAfterRenderingDeferredLights, "AfterRenderingDeferredLights"},
	{RenderPassEventBeforeRenderingOpaques, "BeforeRenderingOpaques"},
	{RenderPassEventAfterRenderingOpaques, "AfterRenderingOpaques"},
	{RenderPassEventBeforeRenderingSkybox, "BeforeRenderingSkybox"},
	{RenderPassEventAfterRenderingSkybox, "AfterRenderingSkybox"},
	{RenderPassEventBeforeRenderingTransparents, "BeforeRenderingTransparents"},
	{RenderPassEventAfterRenderingTransparents, "AfterRenderingTransparents"},
	{RenderPassEventBeforeRenderingPostProcessing, "BeforeRenderingPostProcessing"},
	{RenderPassEventAfterRenderingPostProcessing, "AfterRenderingPostProcessing"},
	{RenderPassEventAfterRendering, "AfterRendering"},
}

func (e RenderPassEvent) String() string {
	for _, n := range renderPassEventNames {
		if n.event == e {
			return n.name
		}
	}
	return strconv.Itoa(int(e))
}

// ParseRenderPassEvent accepts an event name (case insensitive) or a plain
// integer for custom injection points.
func ParseRenderPassEvent(s string) (RenderPassEvent, error) {
	s = strings.TrimSpace(s)
	for _, n := range renderPassEventNames {
		if strings.EqualFold(n.name, s) {
			return n.event, nil
		}
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return RenderPassEvent(v), nil
	}
	return 0, fmt.Errorf("unknown render pass event '%s'", s)
}

func (e RenderPassEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *RenderPassEvent) UnmarshalText(text []byte) error {
	ev, err := ParseRenderPassEvent(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

/** @brief Camera textures a pass needs the host to produce before it runs. */
type RenderPassInput uint8

const (
	RenderPassInputNone   RenderPassInput = 0x0
	RenderPassInputDepth  RenderPassInput = 0x1
	RenderPassInputNormal RenderPassInput = 0x2
	RenderPassInputColor  RenderPassInput = 0x4
)

func (i RenderPassInput) Has(flag RenderPassInput) bool {
	return i&flag == flag
}

func (i RenderPassInput) String() string {
	if i == RenderPassInputNone {
		return "none"
	}
	parts := []string{}
	if i.Has(RenderPassInputDepth) {
		parts = append(parts, "depth")
	}
	if i.Has(RenderPassInputNormal) {
		parts = append(parts, "normal")
	}
	if i.Has(RenderPassInputColor) {
		parts = append(parts, "color")
	}
	return strings.Join(parts, "|")
}

/**
 * @brief Lifecycle state of a render pass.
 */
type PassState int

const (
	/** @brief The pass has not been constructed yet. */
	PassStateUninitialized PassState = iota
	/** @brief The program was found and parameters are bound. */
	PassStateReady
	/** @brief Setup ran for the current camera. */
	PassStateSetup
	/** @brief Execute is recording commands. */
	PassStateExecuting
	/** @brief Cleanup ran for the current camera. */
	PassStateCleanedUp
	/** @brief The program was missing at construction. Terminal. */
	PassStateInactive
	/** @brief The pass was disposed by its feature. Terminal. */
	PassStateDisposed
)

func (s PassState) String() string {
	switch s {
	case PassStateUninitialized:
		return "uninitialized"
	case PassStateReady:
		return "ready"
	case PassStateSetup:
		return "setup"
	case PassStateExecuting:
		return "executing"
	case PassStateCleanedUp:
		return "cleaned-up"
	case PassStateInactive:
		return "inactive"
	case PassStateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("PassState(%d)", int(s))
}
