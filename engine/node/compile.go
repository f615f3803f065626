package node

import (
	"fmt"
	"slices"

	"cogentcore.org/core/base/keylist"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// contributes selects the nodes a Scene compiles or tracks.
func contributes(_ graph.NodeID, n *Node) bool {
	return n.Kind.IsPrimitive() || n.Kind.IsMaterial() || n.Kind == KindTexture || n.Kind == KindCollection
}

// compilation accumulates a new scene while the old one is mined for reusable textures.
type compilation struct {
	ctx *Context
	out scene.Scene
	old scene.Scene

	textures  *keylist.List[graph.NodeID, uint32]
	materials *keylist.List[graph.NodeID, uint32]

	reused  int
	decoded int
}

// Recalculate rebuilds the compiled scene of the Scene node id when it is dirty.
//
// The upstream graph is collected dependencies first, every collected node gets an OnChange
// subscription that marks this Scene dirty, and dependencies that dropped out lose theirs.
// Textures whose path, scale and revision are unchanged are taken from the previous
// compiled scene instead of being decoded again. On success the flags are cleared; on
// error the previous compiled scene stays installed and the node stays dirty.
//
// Parameters:
//   - id: the Scene node to compile
//
// Returns:
//   - RecalculateResult: Recalculated when a new scene was installed, Nothing when clean
//   - error: ErrUnexpectedNode when id or a wired reference has the wrong variant
func (c *Context) Recalculate(id graph.NodeID) (RecalculateResult, error) {
	s, err := c.Scene(id)
	if err != nil {
		return Nothing, err
	}
	if s.flags.IsClean() {
		return Nothing, nil
	}

	old := s.compiled.Take()
	oldTracked := s.tracked
	s.tracked = nil

	collected := graph.Collect(c.Graph, id, contributes)
	tracked := make(map[graph.NodeID]struct{}, collected.Len())
	for i, dep := range collected.Keys {
		tracked[dep] = struct{}{}
		subs := collected.Values[i].Subscriptions()
		if subs != nil && !subs.HasSubscription(id, subscription.OnChange) {
			subs.Subscribe(id, subscription.OnChange, markSceneDirty(dep))
		}
	}
	for _, dep := range oldTracked {
		if _, ok := tracked[dep]; !ok {
			c.unsubscribe(dep, id)
		}
	}

	c.prefetch(collected.Values, &old)

	comp := &compilation{
		ctx:       c,
		old:       old,
		textures:  keylist.New[graph.NodeID, uint32](),
		materials: keylist.New[graph.NodeID, uint32](),
	}
	for i, dep := range collected.Keys {
		if err := comp.add(dep, collected.Values[i]); err != nil {
			s.compiled = old
			s.tracked = collected.Keys
			s.flags = scene.DirtyAll
			return Nothing, fmt.Errorf("compile scene %s: %w", id, err)
		}
	}

	s.compiled = comp.out
	s.tracked = collected.Keys
	c.log.Debugf("scene %s compiled from %s: %s (textures reused %d, decoded %d)",
		id, s.flags, s.compiled.Stats(), comp.reused, comp.decoded)
	s.flags = scene.DirtyNone
	return Recalculated, nil
}

// prefetch decodes the textures old cannot supply on the loader's pool so the sequential
// pass finds them cached.
func (c *Context) prefetch(nodes []*Node, old *scene.Scene) {
	if c.Loader == nil {
		return
	}
	var requests []loader.Request
	for _, n := range nodes {
		if n.Kind != KindTexture {
			continue
		}
		t := n.Texture
		scale := t.Scale.Get()
		reusable := slices.ContainsFunc(old.Textures, func(d scene.TextureData) bool {
			return d.Matches(t.Path, scale, t.Revision)
		})
		if !reusable {
			requests = append(requests, loader.Request{Path: t.Path, Scale: scale, Revision: t.Revision})
		}
	}
	if len(requests) > 1 {
		c.Loader.Prefetch(requests)
	}
}

func (b *compilation) add(id graph.NodeID, n *Node) error {
	switch {
	case n.Kind == KindTexture:
		b.textures.Set(id, b.texture(n.Texture))
	case n.Kind.IsMaterial():
		m, err := b.material(n)
		if err != nil {
			return err
		}
		b.materials.Set(id, b.appendMaterial(m))
	case n.Kind == KindSphere:
		return b.sphere(n.Sphere)
	}
	return nil
}

// texture returns the index of t in the new scene, reusing an equal texture already
// compiled, sharing the pixels of one in the old scene or loading it. The old scene is
// left intact so a failed compilation can reinstall it.
func (b *compilation) texture(t *TextureNode) uint32 {
	scale := t.Scale.Get()
	for i := range b.out.Textures {
		if b.out.Textures[i].Matches(t.Path, scale, t.Revision) {
			return uint32(i)
		}
	}

	var data scene.TextureData
	found := false
	for i := range b.old.Textures {
		if b.old.Textures[i].Matches(t.Path, scale, t.Revision) {
			data = b.old.Textures[i]
			found = true
			b.reused++
			break
		}
	}
	if !found {
		data = b.load(t.Path, scale, t.Revision)
		b.decoded++
	}
	b.out.Textures = append(b.out.Textures, data)
	return uint32(len(b.out.Textures) - 1)
}

func (b *compilation) load(path string, scale float32, revision uint64) scene.TextureData {
	if b.ctx.Loader == nil {
		b.ctx.log.Errorf("no texture loader configured, using placeholder for %q", path)
		return loader.Placeholder(path, scale, revision)
	}
	return b.ctx.Loader.LoadOrPlaceholder(path, scale, revision)
}

func (b *compilation) appendMaterial(m scene.Material) uint32 {
	b.out.Materials = append(b.out.Materials, m)
	return uint32(len(b.out.Materials) - 1)
}

func (b *compilation) sphere(s *SphereNode) error {
	var matIdx uint32
	if ref := s.Material.Get(); ref != nil {
		idx, ok := b.materials.AtTry(*ref)
		if !ok {
			dep, _ := b.ctx.Graph.Get(*ref)
			return unexpected(*ref, "compiled material", dep)
		}
		matIdx = idx
	} else {
		inline := s.Inline
		if inline == nil {
			inline = New(KindLambertian)
		}
		m, err := b.material(inline)
		if err != nil {
			return err
		}
		matIdx = b.appendMaterial(m)
	}

	center := s.Center.Get()
	b.out.Spheres = append(b.out.Spheres, scene.Sphere{
		Center:      [3]float32(center),
		Radius:      s.Radius.Get(),
		MaterialIdx: matIdx,
	})
	return nil
}
