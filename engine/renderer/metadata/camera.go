package metadata

import "github.com/spaghettifunk/screenfx/engine/core"

/** @brief What a camera renders for. */
type CameraType int

const (
	/** @brief A camera rendering the running application. */
	CameraTypeGame CameraType = iota
	/** @brief The editor scene view camera. */
	CameraTypeSceneView
	/** @brief Thumbnail and inspector preview cameras. */
	CameraTypePreview
	/** @brief Cameras rendering reflection probes. */
	CameraTypeReflection
)

func (c CameraType) String() string {
	switch c {
	case CameraTypeGame:
		return "game"
	case CameraTypeSceneView:
		return "scene-view"
	case CameraTypePreview:
		return "preview"
	case CameraTypeReflection:
		return "reflection"
	}
	return "unknown"
}

/**
 * @brief Per-camera state supplied by the host. Read only for passes.
 */
type CameraData struct {
	Name       string
	CameraType CameraType
	/** @brief Descriptor of the camera target; temporary buffers derive from it. */
	TargetDescriptor RenderTextureDescriptor
	/** @brief The camera colour buffer passes read from and write back into. */
	ColorTarget *Texture
	/** @brief Optional camera depth texture. */
	DepthTarget *Texture
}

// IsPreview reports whether the camera is a non-primary camera (scene view or
// preview) that post-processing passes must skip.
func (c *CameraData) IsPreview() bool {
	return c.CameraType == CameraTypeSceneView || c.CameraType == CameraTypePreview
}

// ColorIdentifier returns the identifier of the camera colour buffer.
func (c *CameraData) ColorIdentifier() RenderTargetIdentifier {
	if c.ColorTarget == nil {
		return RenderTargetIdentifier{}
	}
	return RenderTargetIdentifier{
		Kind:     RenderTargetKindCamera,
		Property: core.PropertyCameraColor,
		Texture:  c.ColorTarget,
	}
}

/**
 * @brief Everything a pass needs to know about the camera being rendered.
 */
type RenderingData struct {
	CameraData  *CameraData
	FrameNumber uint64
}
