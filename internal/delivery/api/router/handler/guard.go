package handler

import (
	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/domain/policy"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// authorize applies the collection-level rule of action before the path or body is read.
// Anonymous and wrong-role callers are refused ahead of any 404 or 400.
func authorize(c echo.Context, action policy.Action) (*policy.Caller, error) {
	caller := deliverycontext.GetCaller(c)
	if err := policy.Check(action, caller, nil); err != nil {
		return nil, err
	}

	return caller, nil
}

// payloadError returns err unless check refuses the caller on the target object,
// whose 404 or 403 outranks a malformed payload.
func payloadError(err error, check func() error) error {
	if denied := check(); denied != nil {
		return errors.WithStack(denied)
	}

	return err
}
