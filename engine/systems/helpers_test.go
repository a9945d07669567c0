package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/renderer"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

type fakeBackend struct {
	created   int
	destroyed int
	submitted [][]renderer.Command
	failAlloc bool
}

func (b *fakeBackend) Submit(name string, commands []renderer.Command) error {
	b.submitted = append(b.submitted, commands)
	return nil
}

func (b *fakeBackend) CreateRenderTexture(name string, desc metadata.RenderTextureDescriptor, filter metadata.FilterMode) (*metadata.Texture, error) {
	if b.failAlloc {
		return nil, errors.New("out of memory")
	}
	b.created++
	return &metadata.Texture{Name: name}, nil
}

func (b *fakeBackend) DestroyRenderTexture(t *metadata.Texture) {
	b.destroyed++
}

func (b *fakeBackend) ShaderPrograms() []metadata.ShaderProgram {
	return []metadata.ShaderProgram{
		{Name: metadata.BUILTIN_SHADER_NAME_BOX_BLUR, PassCount: 2, Properties: []core.Property{core.PropertyBlurStrength}},
		{Name: metadata.BUILTIN_SHADER_NAME_DEPTH, PassCount: 1},
	}
}

func newTestResources(backend *fakeBackend) *TemporaryResourceSystem {
	trs, err := NewTemporaryResourceSystem(TemporaryResourceSystemConfig{MaxPooledDescriptors: 4}, backend)
	if err != nil {
		panic(err)
	}
	return trs
}

func gameCamera(name string) *metadata.CameraData {
	return &metadata.CameraData{
		Name:             name,
		CameraType:       metadata.CameraTypeGame,
		TargetDescriptor: metadata.RenderTextureDescriptor{Width: 64, Height: 32, DepthBufferBits: 24},
		ColorTarget:      &metadata.Texture{Name: name + "_Color"},
	}
}

// fakePass logs its lifecycle calls into a shared journal and keeps one
// scratch buffer between setup and cleanup.
type fakePass struct {
	renderer.PassLifecycle

	name    string
	event   metadata.RenderPassEvent
	input   metadata.RenderPassInput
	journal *[]string
	scratch *renderer.ScratchSet

	failSetup    bool
	failExecute  bool
	panicExecute bool
	skipRelease  bool

	acquires int
	releases int
}

func newFakePass(name string, event metadata.RenderPassEvent, journal *[]string) *fakePass {
	p := &fakePass{
		name:    name,
		event:   event,
		journal: journal,
		scratch: renderer.NewScratchSet(name),
	}
	p.Initialize(true)
	return p
}

func (p *fakePass) log(step string) {
	*p.journal = append(*p.journal, fmt.Sprintf("%s:%s", p.name, step))
}

func (p *fakePass) Name() string                    { return p.name }
func (p *fakePass) Event() metadata.RenderPassEvent { return p.event }
func (p *fakePass) Input() metadata.RenderPassInput { return p.input }

func (p *fakePass) Setup(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	p.log("setup")
	if err := p.BeginSetup(); err != nil {
		return err
	}
	desc := data.CameraData.TargetDescriptor.Downsample(2).WithDepthBits(0)
	h, err := p.scratch.Acquire(ctx.Resources, core.PropertyTemporaryBuffer, desc, metadata.FilterModeBilinear)
	if err != nil {
		return err
	}
	p.acquires++
	ctx.Commands.GetTemporaryRT(h)
	if p.failSetup {
		return errors.New("setup failed")
	}
	return nil
}

func (p *fakePass) Execute(ctx *renderer.PassContext, data *metadata.RenderingData) error {
	p.log("execute")
	if err := p.BeginExecute(); err != nil {
		return err
	}
	if p.panicExecute {
		panic("boom")
	}
	if p.failExecute {
		return errors.New("execute failed")
	}
	return nil
}

func (p *fakePass) Cleanup(ctx *renderer.PassContext) error {
	p.log("cleanup")
	p.FinishCleanup()
	if p.skipRelease {
		return nil
	}
	p.releases += p.scratch.Len()
	return p.scratch.ReleaseAll(ctx.Resources, ctx.Commands)
}

func (p *fakePass) Dispose() {
	p.PassLifecycle.Dispose()
}
