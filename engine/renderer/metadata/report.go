package metadata

import "time"

/** @brief What happened to one pass for one camera. */
type PassOutcome int

const (
	/** @brief Setup, execute and cleanup all ran. */
	PassOutcomeExecuted PassOutcome = iota
	/** @brief Rejected by the admission rule. No lifecycle call was made. */
	PassOutcomeSkipped
	/** @brief A lifecycle call returned an error. Cleanup still ran if setup did. */
	PassOutcomeFailed
)

func (o PassOutcome) String() string {
	switch o {
	case PassOutcomeExecuted:
		return "executed"
	case PassOutcomeSkipped:
		return "skipped"
	case PassOutcomeFailed:
		return "failed"
	}
	return "unknown"
}

type PassReport struct {
	Name     string
	Event    RenderPassEvent
	Outcome  PassOutcome
	Err      error
	Duration time.Duration
}

type CameraReport struct {
	Camera string
	// Inputs is the union of the inputs requested by the admitted passes.
	Inputs RenderPassInput
	Passes []PassReport
	// Leaked counts temporary buffers force-released at the end of the camera.
	Leaked int
}

// Executed returns the names of the passes that completed, in run order.
func (r *CameraReport) Executed() []string {
	names := []string{}
	for _, p := range r.Passes {
		if p.Outcome == PassOutcomeExecuted {
			names = append(names, p.Name)
		}
	}
	return names
}

type FrameReport struct {
	FrameNumber uint64
	Cameras     []CameraReport
	Duration    time.Duration
	// SubmitErrors counts backend submissions that failed this frame.
	SubmitErrors int
}

// Camera returns the report of the named camera, or nil.
func (r *FrameReport) Camera(name string) *CameraReport {
	for i := range r.Cameras {
		if r.Cameras[i].Camera == name {
			return &r.Cameras[i]
		}
	}
	return nil
}
