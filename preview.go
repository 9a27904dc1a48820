package intakekit

import (
	"context"
	"fmt"
	"sync"

	"github.com/gobeaver/intakekit/filetype"
)

// PreviewKind buckets an accepted entry for renderer dispatch.
type PreviewKind string

const (
	KindMedia   PreviewKind = "media"
	KindPDF     PreviewKind = "pdf"
	KindWord    PreviewKind = "word"
	KindText    PreviewKind = "text"
	KindGeneric PreviewKind = "generic"
)

// PreviewNode is the single UI node a renderer produces for one entry.
// Nodes are correlated to entries by tracking ID for later eviction.
type PreviewNode struct {
	TrackingID string
	Kind       PreviewKind

	// Title is the display title, usually the file name.
	Title string

	// Detail is renderer-specific: a size label, a page count, a snippet.
	Detail string
}

// Surface is where preview nodes land. Implementations adapt an actual UI
// container; the dispatcher only ever attaches and detaches nodes.
type Surface interface {
	// Attach adds one node at the given position.
	Attach(pos PreviewPosition, node PreviewNode) error

	// Detach removes every node tagged with the tracking ID.
	Detach(trackingID string)

	// SupportsInline reports whether nodes can be placed inside the
	// intake control itself.
	SupportsInline() bool
}

// RenderRequest carries everything a renderer needs for one entry.
type RenderRequest struct {
	Session     string
	TrackingID  string
	Handle      Handle
	MIME        string
	Interactive bool
	Position    PreviewPosition
}

// Renderer produces exactly one preview node on the surface, tagged with
// the request's tracking ID. Renderers for non-interactive requests must
// not retain the handle after returning.
type Renderer interface {
	Render(ctx context.Context, surface Surface, req RenderRequest) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, surface Surface, req RenderRequest) error

func (f RendererFunc) Render(ctx context.Context, surface Surface, req RenderRequest) error {
	return f(ctx, surface, req)
}

var (
	kindRenderers = make(map[PreviewKind]Renderer)
	rendererMutex sync.RWMutex
)

// RegisterRenderer installs the package-wide renderer for a preview kind,
// used by dispatchers without a per-instance override. A nil renderer
// removes the registration.
func RegisterRenderer(kind PreviewKind, r Renderer) {
	rendererMutex.Lock()
	defer rendererMutex.Unlock()
	if r == nil {
		delete(kindRenderers, kind)
		return
	}
	kindRenderers[kind] = r
}

func registeredRenderer(kind PreviewKind) (Renderer, bool) {
	rendererMutex.RLock()
	defer rendererMutex.RUnlock()
	r, ok := kindRenderers[kind]
	return r, ok
}

// placeholderRenderer emits a metadata-only node for its kind. Every kind
// starts with one registered so dispatch works before any richer renderer
// is installed.
type placeholderRenderer struct {
	kind PreviewKind
}

func (p placeholderRenderer) Render(ctx context.Context, surface Surface, req RenderRequest) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return surface.Attach(req.Position, PreviewNode{
		TrackingID: req.TrackingID,
		Kind:       p.kind,
		Title:      req.Handle.Name(),
		Detail:     FormatSizeReadable(req.Handle.Size()),
	})
}

func init() {
	for _, kind := range []PreviewKind{KindMedia, KindPDF, KindWord, KindText, KindGeneric} {
		RegisterRenderer(kind, placeholderRenderer{kind})
	}
}

// PreviewDispatcher routes accepted entries to the renderer for their
// classified kind and evicts preview nodes when entries leave a session.
type PreviewDispatcher struct {
	surface    Surface
	classifier *filetype.Classifier

	mu        sync.RWMutex
	renderers map[PreviewKind]Renderer
}

// NewPreviewDispatcher creates a dispatcher attached to the surface. A nil
// classifier falls back to the default classifier.
func NewPreviewDispatcher(surface Surface, classifier *filetype.Classifier) *PreviewDispatcher {
	if classifier == nil {
		classifier = filetype.DefaultClassifier()
	}
	return &PreviewDispatcher{
		surface:    surface,
		classifier: classifier,
		renderers:  make(map[PreviewKind]Renderer),
	}
}

// Surface returns the surface the dispatcher attaches nodes to.
func (d *PreviewDispatcher) Surface() Surface {
	return d.surface
}

// Register overrides the renderer for a kind on this dispatcher only.
func (d *PreviewDispatcher) Register(kind PreviewKind, r Renderer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r == nil {
		delete(d.renderers, kind)
		return
	}
	d.renderers[kind] = r
}

// KindFor classifies an entry for dispatch. Media wins over everything,
// then PDF by type or suffix, then Word documents, then known text
// extensions; anything else renders as a generic placeholder.
func (d *PreviewDispatcher) KindFor(name, mimeType string) PreviewKind {
	switch filetype.CategoryOf(mimeType) {
	case filetype.CategoryImage, filetype.CategoryVideo, filetype.CategoryAudio:
		return KindMedia
	}

	ext := filetype.ExtensionOf(name)
	if mimeType == filetype.MIMEPDF || ext == ".pdf" {
		return KindPDF
	}
	if mimeType == filetype.MIMEWordDocX || ext == ".docx" {
		return KindWord
	}
	if d.classifier.IsTextDocument(name) {
		return KindText
	}
	return KindGeneric
}

// Render classifies the request and invokes the renderer for its kind.
func (d *PreviewDispatcher) Render(ctx context.Context, req RenderRequest) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if d.surface == nil {
		return ErrNoSurface
	}

	kind := d.KindFor(req.Handle.Name(), req.MIME)
	r, err := d.rendererFor(kind)
	if err != nil {
		return err
	}
	if err := r.Render(ctx, d.surface, req); err != nil {
		return fmt.Errorf("render %s preview for %s: %w", kind, req.Handle.Name(), err)
	}
	return nil
}

func (d *PreviewDispatcher) rendererFor(kind PreviewKind) (Renderer, error) {
	d.mu.RLock()
	r, ok := d.renderers[kind]
	d.mu.RUnlock()
	if ok {
		return r, nil
	}
	if r, ok := registeredRenderer(kind); ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w for kind %s", ErrNoRenderer, kind)
}

// Evict removes the preview nodes tagged with the tracking ID.
func (d *PreviewDispatcher) Evict(trackingID string) {
	if d.surface != nil {
		d.surface.Detach(trackingID)
	}
}

// BindEvents subscribes the dispatcher to removal events so previews are
// evicted when entries leave their session. The returned function
// unsubscribes.
func (d *PreviewDispatcher) BindEvents(events *Events) (unregister func()) {
	return events.OnRemoval(func(evt RemovalEvent) {
		d.Evict(evt.TrackingID)
	})
}

// MemorySurface collects preview nodes in memory, for tests and headless
// use. The zero value is a surface without inline support.
type MemorySurface struct {
	// Inline reports inline placement support. Set before use.
	Inline bool

	mu    sync.RWMutex
	nodes []PreviewNode
}

// NewMemorySurface creates a surface that supports inline placement.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{Inline: true}
}

func (m *MemorySurface) Attach(pos PreviewPosition, node PreviewNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos == PreviewTop {
		m.nodes = append([]PreviewNode{node}, m.nodes...)
		return nil
	}
	m.nodes = append(m.nodes, node)
	return nil
}

func (m *MemorySurface) Detach(trackingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.nodes[:0]
	for _, n := range m.nodes {
		if n.TrackingID != trackingID {
			kept = append(kept, n)
		}
	}
	m.nodes = kept
}

func (m *MemorySurface) SupportsInline() bool {
	return m.Inline
}

// Nodes returns a snapshot of the attached nodes in display order.
func (m *MemorySurface) Nodes() []PreviewNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PreviewNode, len(m.nodes))
	copy(out, m.nodes)
	return out
}

var (
	_ Surface  = (*MemorySurface)(nil)
	_ Renderer = placeholderRenderer{}
	_ Renderer = RendererFunc(nil)
)
