package renderer

// RendererBackend executes submitted command lists. Submission is fire and
// forget from the point of view of the passes.
type RendererBackend interface {
	Submit(name string, commands []Command) error
}
