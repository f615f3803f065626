package viewer

import (
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/node"
)

// watch registers a texture path with the watcher, if any.
func (v *Viewer) watch(path string) {
	if v.watcher == nil || path == "" {
		return
	}
	if err := v.watcher.Watch(path); err != nil {
		v.log.Warningf("cannot watch texture %s: %v", path, err)
	}
}

// watchAll registers the path of every Texture node.
func (v *Viewer) watchAll() {
	for _, id := range v.ctx.Graph.IDs() {
		if n, ok := v.ctx.Graph.Get(id); ok && n.Kind == node.KindTexture {
			v.watch(n.Texture.Path)
		}
	}
}

func (v *Viewer) texturePathInUse(path string) bool {
	for _, id := range v.ctx.Graph.IDs() {
		if n, ok := v.ctx.Graph.Get(id); ok && n.Kind == node.KindTexture && n.Texture.Path == path {
			return true
		}
	}
	return false
}

// drainWatcher bumps the revision of every Texture node whose file changed on disk and
// notifies its subscribers, so the owning scene recompiles with a fresh decode.
func (v *Viewer) drainWatcher() {
	if v.watcher == nil {
		return
	}
	for _, path := range v.watcher.Poll() {
		v.log.Infof("texture %s changed on disk", path)
		v.bumpTextures(func(t *node.TextureNode) bool { return t.Path == path })
	}
}

// reloadTextures bumps every texture revision.
func (v *Viewer) reloadTextures() {
	v.bumpTextures(func(t *node.TextureNode) bool { return t.Path != "" })
}

func (v *Viewer) bumpTextures(match func(t *node.TextureNode) bool) {
	var bumped []graph.NodeID
	for _, id := range v.ctx.Graph.IDs() {
		n, ok := v.ctx.Graph.Get(id)
		if !ok || n.Kind != node.KindTexture || !match(n.Texture) {
			continue
		}
		n.Texture.Revision++
		v.loader.Evict(n.Texture.Path)
		bumped = append(bumped, id)
	}
	for _, id := range bumped {
		if err := v.ctx.Changed(id); err != nil {
			v.log.Warningf("texture %s: %v", id, err)
		}
	}
}
