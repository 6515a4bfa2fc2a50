// Package acl holds the contract shared by anti-corruption translators:
// decode an externally owned payload, check the minimal fields, apply, and
// answer with a plain bool instead of an error.
package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

// Translate decodes env into In and hands it to apply. Decode failures,
// errors from apply and panics are all logged and reported as false.
func Translate[In any](ctx context.Context, log *slog.Logger, env envelope.Envelope, apply func(context.Context, In) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("translator panicked", "type", env.Type, "envelope_id", env.ID, "panic", r)
			ok = false
		}
	}()

	var in In
	if err := env.Decode(&in); err != nil {
		log.Warn("rejecting unparseable event", "type", env.Type, "envelope_id", env.ID, "err", err)
		return false
	}
	if err := apply(ctx, in); err != nil {
		if apperror.Is(err, apperror.KindValidation) {
			log.Warn("rejecting invalid event", "type", env.Type, "envelope_id", env.ID, "err", err)
		} else {
			log.Error("translation failed", "type", env.Type, "envelope_id", env.ID, "err", err)
		}
		return false
	}
	return true
}

// Required fails when value is empty or only whitespace.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation(fmt.Sprintf("%s is required", field))
	}
	return nil
}

func Invalid(format string, args ...any) error {
	return apperror.Validation(fmt.Sprintf(format, args...))
}
