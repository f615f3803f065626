package raytracer

import (
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
)

// rebuildScene replaces the scene bind group. The previous group stays bound if the new one
// cannot be created.
func (r *Raytracer) rebuildScene(sc *scene.Scene) error {
	group, counts, err := r.createSceneGroup(sc)
	if err != nil {
		return err
	}
	if r.sceneGroup != nil {
		r.sceneGroup.Release()
	}
	r.sceneGroup = group
	r.sceneCounts = counts
	r.sceneReady = true
	log.Infof("scene uploaded: %s", sc.Stats())
	return nil
}

func (r *Raytracer) createSceneGroup(sc *scene.Scene) (bind_group_provider.BindGroupProvider, scene.GPUBuffers, error) {
	bufs, err := sc.Flatten()
	if err != nil {
		return nil, scene.GPUBuffers{}, err
	}

	data := map[int][]byte{
		bindingSpheres:            bufs.Spheres,
		bindingMaterials:          bufs.Materials,
		bindingTextureDescriptors: bufs.TextureDescriptors,
		bindingTexels:             bufs.Texels,
		bindingLights:             bufs.Lights,
	}
	sizes := make(map[int]uint64, len(data))
	for binding, b := range data {
		sizes[binding] = uint64(len(b))
	}

	group := bind_group_provider.NewBindGroupProvider("Raytracer Scene")
	if err := r.backend.InitBindGroup(group, r.pipeline.BindGroupLayouts()[groupScene], nil, sizes); err != nil {
		group.Release()
		return nil, scene.GPUBuffers{}, fmt.Errorf("failed to create scene bind group: %w", err)
	}

	writes := make([]bind_group_provider.BufferWrite, 0, len(data))
	for binding := bindingSpheres; binding <= bindingLights; binding++ {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: group, Binding: binding, Data: data[binding]})
	}
	r.backend.WriteBuffers(writes)
	return group, bufs, nil
}
