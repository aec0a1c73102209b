package mapfile

import (
	"strconv"
	"time"

	"github.com/serumrl/map-engine/internal/engine/world"
	"github.com/serumrl/map-engine/internal/entities"
	"github.com/serumrl/map-engine/internal/errors"
)

// Known property keys per item type. Anything not listed lands in the
// entity/object property bag untouched.
var knownKeys = map[string]map[string]bool{
	typeCivilian:    {"id": true, "pos": true, "role": true, "routine": true, "transformed_type": true},
	typeGuard:       {"id": true, "pos": true, "alert": true, "route": true, "last_seen": true},
	typeAnimal:      {"id": true, "pos": true, "original": true, "animal": true, "transform_time": true, "friendly": true},
	typeFurniture:   {"id": true, "pos": true, "furniture": true, "movable": true, "blocks": true},
	typeSecurity:    {"id": true, "pos": true, "active": true, "disabled": true, "range": true, "trigger": true},
	typeInteractive: {"id": true, "pos": true, "used": true, "keycard": true, "result": true},
	typeDoor:        {"id": true, "pos": true, "open": true, "locked": true},
	typeStairs:      {"id": true, "pos": true, "dir": true, "target": true, "target_floor": true},
}

// spawnItem materializes one item at (x, y). suffix disambiguates ids when a
// template line spawns more than one instance.
func (p *Parser) spawnItem(floor *world.Floor, item *itemLine, x, y int, suffix string) error {
	pos := entities.Position{X: x, Y: y, Floor: floor.Number()}

	id, ok := item.get("id")
	if !ok || id == "" {
		id = p.idGen.Generate()
	}
	id += suffix

	switch item.Type {
	case typeCivilian:
		e := entities.NewCivilian(id, pos, &entities.CivilianData{
			Role:            stringProp(item, "role"),
			Routine:         stringProp(item, "routine"),
			TransformedType: stringProp(item, "transformed_type"),
		})
		copyExtraProps(item, e.SetProperty)
		return floor.PlaceEntity(e)

	case typeGuard:
		data := &entities.GuardData{}
		var err error
		if data.AlertLevel, err = intProp(item, "alert", 0); err != nil {
			return err
		}
		if route, ok := item.get("route"); ok {
			zone, found := floor.Zone(route)
			if !found {
				return errors.InvalidArgumentf("guard %s references unknown patrol zone %q", id, route)
			}
			data.PatrolRoute = zone.Points
		}
		if raw, ok := item.get("last_seen"); ok {
			sx, sy, err := parsePoint(raw)
			if err != nil {
				return errors.Wrapf(err, "guard %s last_seen", id)
			}
			data.LastSeenPlayer = &entities.Position{X: sx, Y: sy, Floor: floor.Number()}
		}
		e := entities.NewGuard(id, pos, data)
		copyExtraProps(item, e.SetProperty)
		return floor.PlaceEntity(e)

	case typeAnimal:
		data := &entities.AnimalData{
			OriginalType: stringProp(item, "original"),
			AnimalType:   stringProp(item, "animal"),
		}
		var err error
		if data.Friendly, err = boolProp(item, "friendly", false); err != nil {
			return err
		}
		if raw, ok := item.get("transform_time"); ok {
			if data.TransformTime, err = time.Parse(time.RFC3339, raw); err != nil {
				return errors.InvalidArgumentf("animal %s has bad transform_time %q", id, raw)
			}
		}
		e := entities.NewAnimal(id, pos, data)
		copyExtraProps(item, e.SetProperty)
		return floor.PlaceEntity(e)

	case typeFurniture:
		data := &entities.FurnitureData{FurnitureType: stringProp(item, "furniture")}
		var err error
		if data.Movable, err = boolProp(item, "movable", false); err != nil {
			return err
		}
		if data.BlocksMovement, err = boolProp(item, "blocks", false); err != nil {
			return err
		}
		o := entities.NewFurniture(id, pos, data)
		copyExtraProps(item, o.SetProperty)
		return floor.PlaceObject(o)

	case typeSecurity:
		data := &entities.SecurityDeviceData{TriggerCondition: stringProp(item, "trigger")}
		var err error
		if data.Active, err = boolProp(item, "active", true); err != nil {
			return err
		}
		if data.Disabled, err = boolProp(item, "disabled", false); err != nil {
			return err
		}
		if data.DetectionRange, err = intProp(item, "range", 0); err != nil {
			return err
		}
		o := entities.NewSecurityDevice(id, pos, data)
		copyExtraProps(item, o.SetProperty)
		return floor.PlaceObject(o)

	case typeInteractive:
		data := &entities.InteractiveData{InteractionResult: stringProp(item, "result")}
		var err error
		if data.Used, err = boolProp(item, "used", false); err != nil {
			return err
		}
		if data.RequiresKeycard, err = boolProp(item, "keycard", false); err != nil {
			return err
		}
		o := entities.NewInteractive(id, pos, data)
		copyExtraProps(item, o.SetProperty)
		return floor.PlaceObject(o)

	case typeDoor:
		data := &entities.DoorData{}
		var err error
		if data.Open, err = boolProp(item, "open", false); err != nil {
			return err
		}
		if data.Locked, err = boolProp(item, "locked", false); err != nil {
			return err
		}
		if floor.TileAt(x, y) != entities.TileDoor {
			if err := floor.SetTile(x, y, entities.TileDoor); err != nil {
				return err
			}
		}
		o := entities.NewDoor(id, pos, data)
		copyExtraProps(item, o.SetProperty)
		return floor.PlaceObject(o)

	case typeStairs:
		return p.spawnStairs(floor, item, pos)
	}

	return errors.InvalidArgumentf("unknown item type %q", item.Type)
}

// spawnStairs records a stairs link, setting the tile from 'dir' when the
// grid used a template character.
func (p *Parser) spawnStairs(floor *world.Floor, item *itemLine, pos entities.Position) error {
	if dir, ok := item.get("dir"); ok {
		var kind entities.TileKind
		switch dir {
		case "up":
			kind = entities.TileStairsUp
		case "down":
			kind = entities.TileStairsDown
		default:
			return errors.InvalidArgumentf("stairs at %s has bad dir %q, want up or down", pos, dir)
		}
		if err := floor.SetTile(pos.X, pos.Y, kind); err != nil {
			return err
		}
	}

	targetRaw, ok := item.get("target")
	if !ok {
		return errors.InvalidArgumentf("stairs at %s missing target", pos)
	}
	tx, ty, err := parsePoint(targetRaw)
	if err != nil {
		return errors.Wrapf(err, "stairs at %s", pos)
	}

	targetFloor, err := intProp(item, "target_floor", 0)
	if err != nil {
		return err
	}
	if targetFloor < 1 {
		return errors.InvalidArgumentf("stairs at %s missing target_floor", pos)
	}

	return floor.SetStairs(pos, world.StairsLink{
		TargetFloor: targetFloor,
		Target:      entities.Position{X: tx, Y: ty, Floor: targetFloor},
	})
}

// copyExtraProps forwards keys the type does not consume into a property bag.
func copyExtraProps(item *itemLine, set func(key, value string)) {
	known := knownKeys[item.Type]
	for _, p := range item.Props {
		if !known[p.Key] {
			set(p.Key, p.Value)
		}
	}
}

func stringProp(item *itemLine, key string) string {
	v, _ := item.get(key)
	return v
}

func boolProp(item *itemLine, key string, def bool) (bool, error) {
	raw, ok := item.get(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, errors.InvalidArgumentf("property %s has bad boolean %q", key, raw)
	}
	return v, nil
}

func intProp(item *itemLine, key string, def int) (int, error) {
	raw, ok := item.get(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, errors.InvalidArgumentf("property %s has bad integer %q", key, raw)
	}
	return v, nil
}
