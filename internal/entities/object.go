package entities

// ObjectKind tags the variant of a GameObject.
type ObjectKind string

// Object kinds
const (
	ObjectFurniture      ObjectKind = "FURNITURE"
	ObjectSecurityDevice ObjectKind = "SECURITY_DEVICE"
	ObjectInteractive    ObjectKind = "INTERACTIVE"
	ObjectDoor           ObjectKind = "DOOR"
)

// GameObject is a static object on a floor. It has the same id, position,
// and property-bag shape as Entity but is not subject to turn-based
// behavior. Exactly one variant payload is non-nil, matching Kind.
type GameObject struct {
	ID         string            `json:"id"`
	Kind       ObjectKind        `json:"kind"`
	Position   Position          `json:"position"`
	Properties map[string]string `json:"properties,omitempty"`

	Furniture   *FurnitureData      `json:"furniture,omitempty"`
	Security    *SecurityDeviceData `json:"security,omitempty"`
	Interactive *InteractiveData    `json:"interactive,omitempty"`
	Door        *DoorData           `json:"door,omitempty"`
}

// FurnitureData holds the furniture variant payload.
type FurnitureData struct {
	FurnitureType  string `json:"furniture_type"`
	Movable        bool   `json:"movable"`
	BlocksMovement bool   `json:"blocks_movement"`
}

// SecurityDeviceData holds the security device variant payload.
type SecurityDeviceData struct {
	Active           bool   `json:"active"`
	Disabled         bool   `json:"disabled"`
	DetectionRange   int    `json:"detection_range"`
	TriggerCondition string `json:"trigger_condition,omitempty"`
}

// InteractiveData holds the interactive object variant payload.
type InteractiveData struct {
	Used              bool   `json:"used"`
	RequiresKeycard   bool   `json:"requires_keycard"`
	InteractionResult string `json:"interaction_result,omitempty"`
}

// DoorData holds the door variant payload. Open/closed drives the floor's
// effective vision and movement blocking at the door tile. Locked is an
// independent flag: a door can be open and locked-open, or closed and
// unlocked.
type DoorData struct {
	Open   bool `json:"open"`
	Locked bool `json:"locked"`
}

// NewFurniture creates a furniture object.
func NewFurniture(id string, pos Position, data *FurnitureData) *GameObject {
	return &GameObject{ID: id, Kind: ObjectFurniture, Position: pos, Furniture: data}
}

// NewSecurityDevice creates a security device object.
func NewSecurityDevice(id string, pos Position, data *SecurityDeviceData) *GameObject {
	return &GameObject{ID: id, Kind: ObjectSecurityDevice, Position: pos, Security: data}
}

// NewInteractive creates an interactive object.
func NewInteractive(id string, pos Position, data *InteractiveData) *GameObject {
	return &GameObject{ID: id, Kind: ObjectInteractive, Position: pos, Interactive: data}
}

// NewDoor creates a door object. Doors sit on DOOR tiles.
func NewDoor(id string, pos Position, data *DoorData) *GameObject {
	return &GameObject{ID: id, Kind: ObjectDoor, Position: pos, Door: data}
}

// BlocksMovement reports whether the object makes its tile impassable.
// Doors and windows block through their tile kind, not the object, so only
// blocking furniture answers true here.
func (o *GameObject) BlocksMovement() bool {
	return o.Kind == ObjectFurniture && o.Furniture != nil && o.Furniture.BlocksMovement
}

// Detecting reports whether a security device currently contributes to
// alert computation.
func (o *GameObject) Detecting() bool {
	return o.Kind == ObjectSecurityDevice && o.Security != nil &&
		o.Security.Active && !o.Security.Disabled
}

// Property reads a property-bag value.
func (o *GameObject) Property(key string) (string, bool) {
	v, ok := o.Properties[key]
	return v, ok
}

// SetProperty writes a property-bag value.
func (o *GameObject) SetProperty(key, value string) {
	if o.Properties == nil {
		o.Properties = make(map[string]string)
	}
	o.Properties[key] = value
}
