package schema

// Variant selects which flavour of the scene is assembled.
type Variant string

const (
	// VariantStill keeps the directional light fixed and skips bloom.
	VariantStill Variant = "still"
	// VariantOrbit orbits the directional light around the rig pivot.
	VariantOrbit Variant = "orbit"
)

type ShapeKind string

const (
	ShapeGroup  ShapeKind = "group"
	ShapeBox    ShapeKind = "box"
	ShapePlane  ShapeKind = "plane"
	ShapeSphere ShapeKind = "sphere"
)

type MaterialKind string

const (
	MaterialStandard MaterialKind = "standard"
	MaterialLambert  MaterialKind = "lambert"
)

type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Index returns the component index of the axis, or -1 if unknown.
func (a Axis) Index() int {
	switch a {
	case AxisX:
		return 0
	case AxisY:
		return 1
	case AxisZ:
		return 2
	default:
		return -1
	}
}

// Vec3 is a triple written as a three element list in layout files.
type Vec3 [3]float64

// Layout is the declarative description of a whole scene.
type Layout struct {
	Name       string              `json:"name" yaml:"name" toml:"name"`
	Variant    Variant             `json:"variant" yaml:"variant" toml:"variant"`
	Background string              `json:"background" yaml:"background" toml:"background"`
	Fog        Fog                 `json:"fog" yaml:"fog" toml:"fog"`
	Camera     Camera              `json:"camera" yaml:"camera" toml:"camera"`
	Controls   Controls            `json:"controls" yaml:"controls" toml:"controls"`
	Materials  map[string]Material `json:"materials" yaml:"materials" toml:"materials"`
	Elements   []Element           `json:"elements" yaml:"elements" toml:"elements"`
	Rows       []Row               `json:"rows" yaml:"rows" toml:"rows"`
	Scatter    []Scatter           `json:"scatter" yaml:"scatter" toml:"scatter"`
	Lighting   Lighting            `json:"lighting" yaml:"lighting" toml:"lighting"`
	Bloom      Bloom               `json:"bloom" yaml:"bloom" toml:"bloom"`
	Output     Output              `json:"output" yaml:"output" toml:"output"`
}

type Fog struct {
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Color   string  `json:"color" yaml:"color" toml:"color"`
	Near    float64 `json:"near" yaml:"near" toml:"near"`
	Far     float64 `json:"far" yaml:"far" toml:"far"`
}

// Camera describes an orthographic camera. HalfSize is the half height of
// the view volume before aspect correction.
type Camera struct {
	HalfSize float64 `json:"halfSize" yaml:"halfSize" toml:"halfSize"`
	Near     float64 `json:"near" yaml:"near" toml:"near"`
	Far      float64 `json:"far" yaml:"far" toml:"far"`
	Zoom     float64 `json:"zoom" yaml:"zoom" toml:"zoom"`
	Position Vec3    `json:"position" yaml:"position" toml:"position"`
	Target   Vec3    `json:"target" yaml:"target" toml:"target"`
}

type Controls struct {
	Damping       bool    `json:"damping" yaml:"damping" toml:"damping"`
	DampingFactor float64 `json:"dampingFactor" yaml:"dampingFactor" toml:"dampingFactor"`
	RotateSpeed   float64 `json:"rotateSpeed" yaml:"rotateSpeed" toml:"rotateSpeed"`
	ZoomSpeed     float64 `json:"zoomSpeed" yaml:"zoomSpeed" toml:"zoomSpeed"`
	MinZoom       float64 `json:"minZoom" yaml:"minZoom" toml:"minZoom"`
	MaxZoom       float64 `json:"maxZoom" yaml:"maxZoom" toml:"maxZoom"`
}

type Material struct {
	Kind      MaterialKind `json:"kind" yaml:"kind" toml:"kind"`
	Color     string       `json:"color" yaml:"color" toml:"color"`
	Roughness float64      `json:"roughness" yaml:"roughness" toml:"roughness"`
	Metalness float64      `json:"metalness" yaml:"metalness" toml:"metalness"`
	Emissive  string       `json:"emissive,omitempty" yaml:"emissive,omitempty" toml:"emissive,omitempty"`
}

type Shape struct {
	Kind     ShapeKind `json:"kind" yaml:"kind" toml:"kind"`
	Width    float64   `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height   float64   `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	Depth    float64   `json:"depth,omitempty" yaml:"depth,omitempty" toml:"depth,omitempty"`
	Radius   float64   `json:"radius,omitempty" yaml:"radius,omitempty" toml:"radius,omitempty"`
	Segments int       `json:"segments,omitempty" yaml:"segments,omitempty" toml:"segments,omitempty"`
}

// Element is a single named node of the scene.
type Element struct {
	Name          string `json:"name" yaml:"name" toml:"name"`
	Parent        string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Shape         Shape  `json:"shape" yaml:"shape" toml:"shape"`
	Material      string `json:"material,omitempty" yaml:"material,omitempty" toml:"material,omitempty"`
	Position      Vec3   `json:"position" yaml:"position" toml:"position"`
	Rotation      Vec3   `json:"rotation" yaml:"rotation" toml:"rotation"`
	Scale         *Vec3  `json:"scale,omitempty" yaml:"scale,omitempty" toml:"scale,omitempty"`
	CastShadow    bool   `json:"castShadow" yaml:"castShadow" toml:"castShadow"`
	ReceiveShadow bool   `json:"receiveShadow" yaml:"receiveShadow" toml:"receiveShadow"`
	Hidden        bool   `json:"hidden" yaml:"hidden" toml:"hidden"`
}

// Row repeats a shape Count times along Axis. The i-th instance sits at
// i/Pitch - Offset on that axis and at Base on the others.
type Row struct {
	Name          string  `json:"name" yaml:"name" toml:"name"`
	Parent        string  `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Shape         Shape   `json:"shape" yaml:"shape" toml:"shape"`
	Material      string  `json:"material" yaml:"material" toml:"material"`
	Count         int     `json:"count" yaml:"count" toml:"count"`
	Pitch         float64 `json:"pitch" yaml:"pitch" toml:"pitch"`
	Offset        float64 `json:"offset" yaml:"offset" toml:"offset"`
	Axis          Axis    `json:"axis" yaml:"axis" toml:"axis"`
	Base          Vec3    `json:"base" yaml:"base" toml:"base"`
	Rotation      Vec3    `json:"rotation" yaml:"rotation" toml:"rotation"`
	Mirror        *Mirror `json:"mirror,omitempty" yaml:"mirror,omitempty" toml:"mirror,omitempty"`
	CastShadow    bool    `json:"castShadow" yaml:"castShadow" toml:"castShadow"`
	ReceiveShadow bool    `json:"receiveShadow" yaml:"receiveShadow" toml:"receiveShadow"`
}

// Mirror duplicates a row with the base coordinate on Axis negated. When
// Rotate is set the copy is also turned half way around the Y axis.
type Mirror struct {
	Axis   Axis `json:"axis" yaml:"axis" toml:"axis"`
	Rotate bool `json:"rotate" yaml:"rotate" toml:"rotate"`
}

// Scatter drops Count instances at seeded random spots on the ground.
type Scatter struct {
	Name     string  `json:"name" yaml:"name" toml:"name"`
	Shape    Shape   `json:"shape" yaml:"shape" toml:"shape"`
	Material string  `json:"material" yaml:"material" toml:"material"`
	Count    int     `json:"count" yaml:"count" toml:"count"`
	Extent   float64 `json:"extent" yaml:"extent" toml:"extent"`
	Seed     int64   `json:"seed" yaml:"seed" toml:"seed"`
	Hidden   bool    `json:"hidden" yaml:"hidden" toml:"hidden"`
}

type Lighting struct {
	Ambient     AmbientLight     `json:"ambient" yaml:"ambient" toml:"ambient"`
	Directional DirectionalLight `json:"directional" yaml:"directional" toml:"directional"`
	Rig         Rig              `json:"rig" yaml:"rig" toml:"rig"`
}

type AmbientLight struct {
	Color     string  `json:"color" yaml:"color" toml:"color"`
	Intensity float64 `json:"intensity" yaml:"intensity" toml:"intensity"`
}

type DirectionalLight struct {
	Color      string  `json:"color" yaml:"color" toml:"color"`
	Intensity  float64 `json:"intensity" yaml:"intensity" toml:"intensity"`
	Position   Vec3    `json:"position" yaml:"position" toml:"position"`
	CastShadow bool    `json:"castShadow" yaml:"castShadow" toml:"castShadow"`
}

// Rig orbits the directional light around Pivot at Speed radians per second.
type Rig struct {
	Enabled bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Pivot   Vec3    `json:"pivot" yaml:"pivot" toml:"pivot"`
	Speed   float64 `json:"speed" yaml:"speed" toml:"speed"`
}

type Bloom struct {
	Enabled   bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Threshold float64 `json:"threshold" yaml:"threshold" toml:"threshold"`
	Strength  float64 `json:"strength" yaml:"strength" toml:"strength"`
	Radius    float64 `json:"radius" yaml:"radius" toml:"radius"`
}

type Output struct {
	Width      int     `json:"width" yaml:"width" toml:"width"`
	Height     int     `json:"height" yaml:"height" toml:"height"`
	PixelRatio float64 `json:"pixelRatio" yaml:"pixelRatio" toml:"pixelRatio"`
}
