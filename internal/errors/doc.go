// Package errors provides structured error handling for map-engine.
//
// Errors carry a code, a message, an optional cause, and optional metadata:
//
//	err := errors.EntityNotFoundf("no entity with id %q", id)
//	err := errors.InvalidMove("destination tile blocks movement").
//	    WithMeta("position", pos)
//
// Wrapping preserves the original code:
//
//	if err := repo.Load(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to load map")
//	}
//
// Callers branch on codes rather than messages:
//
//	if errors.IsEntityNotFound(err) {
//	    // reject the action, keep playing
//	}
//
// Config validation uses the builder:
//
//	vb := errors.NewValidationBuilder()
//	if c.Clock == nil {
//	    vb.RequiredField("Clock")
//	}
//	return vb.Build()
package errors
