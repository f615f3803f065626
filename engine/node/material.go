package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
)

// material converts a material node into its flat form. Colour slots become texture indices:
// the wired texture when there is one, otherwise a new solid-colour texture.
func (b *compilation) material(n *Node) (scene.Material, error) {
	switch n.Kind {
	case KindLambertian:
		albedo, err := b.slot(n.Lambertian.Texture.Get(), n.Lambertian.Albedo.Get())
		if err != nil {
			return scene.Material{}, err
		}
		return scene.Lambertian(albedo), nil
	case KindMetal:
		albedo, err := b.slot(n.Metal.Texture.Get(), n.Metal.Albedo.Get())
		if err != nil {
			return scene.Material{}, err
		}
		return scene.Metal(albedo, n.Metal.Fuzz.Get()), nil
	case KindDielectric:
		return scene.Dielectric(n.Dielectric.RefractionIndex.Get()), nil
	case KindCheckerboard:
		even := b.solid(n.Checkerboard.Even.Get())
		odd := b.solid(n.Checkerboard.Odd.Get())
		return scene.Checkerboard(even, odd), nil
	case KindEmissive:
		emit, err := b.slot(n.Emissive.Texture.Get(), n.Emissive.Emit.Get())
		if err != nil {
			return scene.Material{}, err
		}
		return scene.Emissive(emit), nil
	default:
		return scene.Material{}, unexpected(graph.NodeID{}, "material", n)
	}
}

func (b *compilation) slot(texture *graph.NodeID, color common.Color) (uint32, error) {
	if texture == nil {
		return b.solid(color), nil
	}
	idx, ok := b.textures.AtTry(*texture)
	if !ok {
		dep, _ := b.ctx.Graph.Get(*texture)
		return 0, unexpected(*texture, "compiled texture", dep)
	}
	return idx, nil
}

func (b *compilation) solid(color common.Color) uint32 {
	b.out.Textures = append(b.out.Textures, scene.SolidTexture(color))
	return uint32(len(b.out.Textures) - 1)
}
