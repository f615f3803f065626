package viewer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
)

// ErrNoStorage is returned by Save and Load when the viewer was built without storage.
var ErrNoStorage = errors.New("viewer has no storage")

// Style is the persisted look of the graph editor.
type Style struct {
	NodeLayout   string     `json:"node_layout"`
	PinPlacement string     `json:"pin_placement"`
	PinSize      float32    `json:"pin_size"`
	Zoom         float32    `json:"zoom"`
	Pan          [2]float32 `json:"pan"`
}

// DefaultStyle returns the editor style used when none is stored.
func DefaultStyle() Style {
	return Style{
		NodeLayout:   "flipped_sandwich",
		PinPlacement: "edge",
		PinSize:      7,
		Zoom:         1,
	}
}

// Save writes the graph, style and settings to storage and flushes it.
//
// Returns:
//   - error: ErrNoStorage, an encoding error or a flush error
func (v *Viewer) Save() error {
	if v.storage == nil {
		return ErrNoStorage
	}
	g, err := json.Marshal(v.ctx.Graph)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	style, err := json.Marshal(v.style)
	if err != nil {
		return fmt.Errorf("failed to encode style: %w", err)
	}
	settings, err := v.settings.MarshalJSONString()
	if err != nil {
		return err
	}

	v.storage.SetString(storage.KeyGraph, string(g))
	v.storage.SetString(storage.KeyStyle, string(style))
	v.storage.SetString(storage.KeySettings, settings)
	if err := v.storage.Flush(); err != nil {
		return fmt.Errorf("failed to flush storage: %w", err)
	}
	v.log.Infof("saved %d nodes", v.ctx.Graph.Len())
	return nil
}

// Load restores the graph, style and settings from storage. A missing or undecodable value
// keeps the current one and is logged. The render wired into an Output node is registered
// again and every texture is watched.
//
// Returns:
//   - error: ErrNoStorage, or an error from replaying the stored wires
func (v *Viewer) Load() error {
	if v.storage == nil {
		return ErrNoStorage
	}

	if raw, ok := v.storage.GetString(storage.KeySettings); ok {
		if s, err := config.FromJSONString(raw); err != nil {
			v.log.Warningf("ignoring stored settings: %v", err)
		} else {
			v.settings = s
		}
	}
	if raw, ok := v.storage.GetString(storage.KeyStyle); ok {
		style := DefaultStyle()
		if err := json.Unmarshal([]byte(raw), &style); err != nil {
			v.log.Warningf("ignoring stored style: %v", err)
		} else {
			v.style = style
		}
	}

	raw, ok := v.storage.GetString(storage.KeyGraph)
	if !ok {
		return nil
	}
	g := graph.New[*node.Node]()
	if err := json.Unmarshal([]byte(raw), g); err != nil {
		v.log.Warningf("ignoring stored graph: %v", err)
		return nil
	}
	ctx, err := node.Restore(g, v.loader)
	v.ctx = ctx
	v.render = nil
	v.uploaded = nil
	if id, ok := v.findRender(); ok {
		v.registerRender(id)
	}
	v.watchAll()
	v.log.Infof("loaded %d nodes", g.Len())
	return err
}
