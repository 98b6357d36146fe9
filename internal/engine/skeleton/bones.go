package skeleton

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// DefaultBoneProxyRadius is the pick radius used for imported rigs, which are
// usually authored in centimetres.
const DefaultBoneProxyRadius = 3

// Bone is one skeletal segment of an imported rig.
type Bone struct {
	Name          string
	Parent        string // optional
	WorldPosition math.Vec3
}

// BoneProvider exposes the ordered bones of an imported asset.
type BoneProvider interface {
	Bones() []Bone
}

// BuildBoneProxies creates one pickable joint per bone of an imported rig.
//
// Bone world positions are converted into the model's local space with the
// inverse of modelTransform. Every bone hangs under a synthetic root named
// after the model unless its parent bone was already created, so the result is
// always a single tree. Unnamed bones are called bone_<index>.
//
// A provider with no bones is not an error: a warning is logged and nil is
// returned so the asset can still be shown without joint controls.
func BuildBoneProxies(name string, provider BoneProvider, modelTransform math.Mat4, radius float32) (*Model, error) {
	var bones []Bone
	if provider != nil {
		bones = provider.Bones()
	}
	if len(bones) == 0 {
		logger.Warn("no skeleton found in model, skipping joint proxies", zap.String("model", name))
		return nil, nil
	}

	m := NewModel(name)
	h := m.Hierarchy
	if _, err := h.CreateJoint(name, math.Vec3{}, ""); err != nil {
		return nil, err
	}
	root, _ := h.Joint(name)
	root.ProxyRadius = 0

	toLocal := modelTransform.Inverse()
	for i, b := range bones {
		boneName := b.Name
		if boneName == "" {
			boneName = fmt.Sprintf("bone_%d", i)
		}
		parent := name
		if b.Parent != "" && h.Has(b.Parent) {
			parent = b.Parent
		}
		j, err := h.CreateJoint(boneName, toLocal.TransformVec3(b.WorldPosition), parent)
		if err != nil {
			return nil, fmt.Errorf("bone %d: %w", i, err)
		}
		j.ProxyRadius = radius
	}

	logger.Info("joint proxies created",
		zap.String("model", name),
		zap.Int("bones", len(bones)),
	)
	return m, nil
}

// BoneFile is a YAML dump of an imported rig's bones.
type BoneFile struct {
	Model struct {
		Name        string     `yaml:"name"`
		Translation [3]float32 `yaml:"translation"`
		Scale       float32    `yaml:"scale"`
	} `yaml:"model"`
	List []struct {
		Name     string     `yaml:"name"`
		Parent   string     `yaml:"parent"`
		Position [3]float32 `yaml:"position"`
	} `yaml:"bones"`
}

// Bones implements BoneProvider.
func (f *BoneFile) Bones() []Bone {
	out := make([]Bone, 0, len(f.List))
	for _, b := range f.List {
		out = append(out, Bone{
			Name:          b.Name,
			Parent:        b.Parent,
			WorldPosition: math.Vec3{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]},
		})
	}
	return out
}

// Transform returns the model-to-world matrix described by the file.
func (f *BoneFile) Transform() math.Mat4 {
	s := f.Model.Scale
	if s == 0 {
		s = 1
	}
	t := f.Model.Translation
	return math.Translate(t[0], t[1], t[2]).Mul(math.Scale(s, s, s))
}

// LoadBoneFile reads a bone dump from disk.
func LoadBoneFile(path string) (*BoneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f BoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing bone file %s: %w", path, err)
	}
	if f.Model.Name == "" {
		f.Model.Name = "ImportedModel"
	}
	return &f, nil
}
