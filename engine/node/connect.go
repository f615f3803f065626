package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

func setNumber(pin *common.Pin[float32], id graph.NodeID, src *Node) error {
	v, ok := src.numberValue()
	if !ok {
		return unexpected(id, "number", src)
	}
	pin.Set(v)
	return nil
}

func setVector(pin *common.Pin[mgl32.Vec3], id graph.NodeID, src *Node) error {
	v, ok := src.vectorValue()
	if !ok {
		return unexpected(id, "vector", src)
	}
	pin.Set(v)
	return nil
}

func setColor(pin *common.Pin[common.Color], id graph.NodeID, src *Node) error {
	v, ok := src.vectorValue()
	if !ok {
		return unexpected(id, "color", src)
	}
	pin.Set(common.Color(v))
	return nil
}

func setRef(pin *common.Pin[*graph.NodeID], id graph.NodeID, src *Node, want string, accept func(*Node) bool) error {
	if !accept(src) {
		return unexpected(id, want, src)
	}
	ref := id
	pin.Set(&ref)
	return nil
}

func isTexture(n *Node) bool    { return n.Kind == KindTexture }
func isMaterial(n *Node) bool   { return n.Kind.IsMaterial() }
func isCamera(n *Node) bool     { return n.Kind == KindCamera }
func isSceneNode(n *Node) bool  { return n.Kind == KindScene }
func isSceneInput(n *Node) bool { return n.Kind.IsPrimitive() || n.Kind == KindCollection }

// connect applies the value or reference produced by src to the given input.
func (n *Node) connect(srcID graph.NodeID, src *Node, input int) error {
	switch n.Kind {
	case KindTexture:
		if input == 0 {
			return setNumber(&n.Texture.Scale, srcID, src)
		}
	case KindLambertian:
		switch input {
		case 0:
			return setColor(&n.Lambertian.Albedo, srcID, src)
		case 1:
			return setRef(&n.Lambertian.Texture, srcID, src, "texture", isTexture)
		}
	case KindMetal:
		switch input {
		case 0:
			return setColor(&n.Metal.Albedo, srcID, src)
		case 1:
			return setNumber(&n.Metal.Fuzz, srcID, src)
		case 2:
			return setRef(&n.Metal.Texture, srcID, src, "texture", isTexture)
		}
	case KindDielectric:
		if input == 0 {
			return setNumber(&n.Dielectric.RefractionIndex, srcID, src)
		}
	case KindCheckerboard:
		switch input {
		case 0:
			return setColor(&n.Checkerboard.Even, srcID, src)
		case 1:
			return setColor(&n.Checkerboard.Odd, srcID, src)
		}
	case KindEmissive:
		switch input {
		case 0:
			return setColor(&n.Emissive.Emit, srcID, src)
		case 1:
			return setRef(&n.Emissive.Texture, srcID, src, "texture", isTexture)
		}
	case KindSphere:
		switch input {
		case 0:
			return setVector(&n.Sphere.Center, srcID, src)
		case 1:
			return setNumber(&n.Sphere.Radius, srcID, src)
		case 2:
			return setRef(&n.Sphere.Material, srcID, src, "material", isMaterial)
		}
	case KindCollection:
		if input >= 0 && input <= len(n.Collection.Nodes) {
			n.Collection.insert(input, srcID)
			return nil
		}
	case KindScene:
		if input == 0 {
			if err := setRef(&n.Scene.Data, srcID, src, "primitive or collection", isSceneInput); err != nil {
				return err
			}
			n.Scene.flags = scene.DirtyAll
			return nil
		}
	case KindCamera:
		c := n.Camera
		switch input {
		case 0:
			return setVector(&c.Position, srcID, src)
		case 1:
			return setNumber(&c.Yaw, srcID, src)
		case 2:
			return setNumber(&c.Pitch, srcID, src)
		case 3:
			return setNumber(&c.Vfov, srcID, src)
		case 4:
			return setNumber(&c.Aperture, srcID, src)
		case 5:
			return setNumber(&c.FocusDistance, srcID, src)
		case 6:
			return setRef(&c.Scene, srcID, src, "scene", isSceneNode)
		}
	case KindRaytracerRender:
		if input == 0 {
			return setRef(&n.Render.Camera, srcID, src, "camera", isCamera)
		}
	case KindOutput:
		if input == 0 {
			if !src.IsRender() {
				return unexpected(srcID, "render", src)
			}
			return nil
		}
	}
	return inputOutOfRange(n.Kind, input)
}

// disconnect restores the user value of the given input.
func (n *Node) disconnect(input int) error {
	switch n.Kind {
	case KindTexture:
		if input == 0 {
			n.Texture.Scale.Reset()
			return nil
		}
	case KindLambertian:
		switch input {
		case 0:
			n.Lambertian.Albedo.Reset()
			return nil
		case 1:
			n.Lambertian.Texture.Reset()
			return nil
		}
	case KindMetal:
		switch input {
		case 0:
			n.Metal.Albedo.Reset()
			return nil
		case 1:
			n.Metal.Fuzz.Reset()
			return nil
		case 2:
			n.Metal.Texture.Reset()
			return nil
		}
	case KindDielectric:
		if input == 0 {
			n.Dielectric.RefractionIndex.Reset()
			return nil
		}
	case KindCheckerboard:
		switch input {
		case 0:
			n.Checkerboard.Even.Reset()
			return nil
		case 1:
			n.Checkerboard.Odd.Reset()
			return nil
		}
	case KindEmissive:
		switch input {
		case 0:
			n.Emissive.Emit.Reset()
			return nil
		case 1:
			n.Emissive.Texture.Reset()
			return nil
		}
	case KindSphere:
		switch input {
		case 0:
			n.Sphere.Center.Reset()
			return nil
		case 1:
			n.Sphere.Radius.Reset()
			return nil
		case 2:
			n.Sphere.Material.Reset()
			return nil
		}
	case KindCollection:
		if input >= 0 && input < len(n.Collection.Nodes) {
			n.Collection.remove(input)
			return nil
		}
	case KindScene:
		if input == 0 {
			n.Scene.Data.Reset()
			n.Scene.flags = scene.DirtyAll
			return nil
		}
	case KindCamera:
		c := n.Camera
		pins := []interface{ Reset() }{&c.Position, &c.Yaw, &c.Pitch, &c.Vfov, &c.Aperture, &c.FocusDistance, &c.Scene}
		if input >= 0 && input < len(pins) {
			pins[input].Reset()
			return nil
		}
	case KindRaytracerRender:
		if input == 0 {
			n.Render.Camera.Reset()
			return nil
		}
	case KindOutput:
		if input == 0 {
			return nil
		}
	}
	return inputOutOfRange(n.Kind, input)
}
