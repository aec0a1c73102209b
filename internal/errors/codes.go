package errors

// Code represents an error code
type Code string

// Generic codes
const (
	CodeOK              Code = "OK"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeInternal        Code = "INTERNAL"
	CodeUnavailable     Code = "UNAVAILABLE"
)

// Domain codes for the map/world state engine
const (
	// CodeUnknownTileCharacter is returned when a grid character has no
	// tile kind and no item binding.
	CodeUnknownTileCharacter Code = "UNKNOWN_TILE_CHARACTER"

	// CodeMalformedFloorGrid is returned for ragged or empty floor grids.
	CodeMalformedFloorGrid Code = "MALFORMED_FLOOR_GRID"

	// CodeMissingRequiredSection is returned when a map file lacks
	// [metadata] or a declared floor section.
	CodeMissingRequiredSection Code = "MISSING_REQUIRED_SECTION"

	// CodeEntityNotFound is returned by manager operations on unknown ids.
	CodeEntityNotFound Code = "ENTITY_NOT_FOUND"

	// CodeInvalidMove is returned when a move fails tile or adjacency
	// validation.
	CodeInvalidMove Code = "INVALID_MOVE"

	// CodePositionOccupied is returned when a placement conflicts with a
	// movement-blocking occupant.
	CodePositionOccupied Code = "POSITION_OCCUPIED"

	// CodeInconsistentLedger marks ledger entries that reference no known
	// entity. Loads repair these; the code surfaces in warnings.
	CodeInconsistentLedger Code = "INCONSISTENT_LEDGER"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}
