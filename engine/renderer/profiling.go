package renderer

// ProfilingScope brackets the commands recorded between BeginProfilingScope
// and End with a named sample.
type ProfilingScope struct {
	cmd *CommandBuffer
	tag string
}

func BeginProfilingScope(cmd *CommandBuffer, tag string) *ProfilingScope {
	cmd.BeginSample(tag)
	return &ProfilingScope{cmd: cmd, tag: tag}
}

func (s *ProfilingScope) End() {
	s.cmd.EndSample(s.tag)
}
