package scene

import "strings"

// DirtyFlags describes which categories of compiled scene data are stale.
type DirtyFlags uint32

const (
	DirtyNone            DirtyFlags = 0
	DirtyTextureValue    DirtyFlags = 1 << 0
	DirtyTextureLayout   DirtyFlags = 1 << 1
	DirtyMaterialValue   DirtyFlags = 1 << 2
	DirtyMaterialLayout  DirtyFlags = 1 << 3
	DirtyPrimitiveValue  DirtyFlags = 1 << 4
	DirtyPrimitiveLayout DirtyFlags = 1 << 5

	DirtyAll DirtyFlags = 0xFFFFFFFF
	// DirtyInit marks a scene that has never been compiled. It is distinct from DirtyAll so
	// callers can tell a first compile from a forced recompile.
	DirtyInit DirtyFlags = DirtyAll - 1
)

var dirtyFlagNames = []struct {
	flag DirtyFlags
	name string
}{
	{DirtyTextureValue, "TEXTURE_VALUE"},
	{DirtyTextureLayout, "TEXTURE_LAYOUT"},
	{DirtyMaterialValue, "MATERIAL_VALUE"},
	{DirtyMaterialLayout, "MATERIAL_LAYOUT"},
	{DirtyPrimitiveValue, "PRIMITIVE_VALUE"},
	{DirtyPrimitiveLayout, "PRIMITIVE_LAYOUT"},
}

// Has reports whether every bit of other is set in f.
func (f DirtyFlags) Has(other DirtyFlags) bool {
	return f&other == other
}

// IsClean reports whether no flag is set.
func (f DirtyFlags) IsClean() bool {
	return f == DirtyNone
}

func (f DirtyFlags) String() string {
	switch f {
	case DirtyNone:
		return "NONE"
	case DirtyAll:
		return "ALL"
	case DirtyInit:
		return "INIT"
	}
	var parts []string
	for _, n := range dirtyFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}
