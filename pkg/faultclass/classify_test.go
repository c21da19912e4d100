package faultclass_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify_UnavailablePatterns(t *testing.T) {
	t.Run("Stopped service message", func(t *testing.T) {
		c := faultclass.Classify(errors.New("IC0508: canister is stopped"))

		assert.Equal(t, faultclass.KindUnavailable, c.Kind)
		assert.Contains(t, c.UserMessage, "stopped")
		assert.Contains(t, c.UserMessage, "start it and try again")
	})

	t.Run("Deployment absence message", func(t *testing.T) {
		c := faultclass.Classify(errors.New("Canister not found: the canister id is not deployed"))

		assert.Equal(t, faultclass.KindUnavailable, c.Kind)
		assert.Contains(t, c.UserMessage, "may not be deployed")
	})

	t.Run("Network level failures", func(t *testing.T) {
		for _, msg := range []string{
			"connection refused",
			"request timeout after 8s",
			"TypeError: Failed to fetch",
			"no route to host",
		} {
			c := faultclass.Classify(errors.New(msg))
			assert.Equal(t, faultclass.KindUnavailable, c.Kind, "message %q", msg)
			assert.Contains(t, c.UserMessage, "connection", "message %q", msg)
		}
	})

	t.Run("Reject code message", func(t *testing.T) {
		c := faultclass.Classify(errors.New("Call failed, reject code 5"))

		assert.Equal(t, faultclass.KindUnavailable, c.Kind)
	})

	t.Run("Internal not-ready sentinel is rewritten", func(t *testing.T) {
		c := faultclass.Classify(errors.New("backend service is not available"))

		assert.Equal(t, faultclass.KindUnavailable, c.Kind)
		assert.NotEqual(t, "backend service is not available", c.UserMessage)
		assert.Contains(t, c.UserMessage, "ensure the backend is running")
	})

	t.Run("Context deadline classifies as unavailable", func(t *testing.T) {
		c := faultclass.Classify(fmt.Errorf("fetching products: %w", context.DeadlineExceeded))

		assert.Equal(t, faultclass.KindUnavailable, c.Kind)
	})
}

func TestClassify_Unauthorized(t *testing.T) {
	c := faultclass.Classify(errors.New("Unauthorized: only admins can delete products"))

	assert.Equal(t, faultclass.KindUnauthorized, c.Kind)
	// The neutral message must not leak role details back to the UI.
	assert.NotContains(t, c.UserMessage, "admins")
	assert.NotContains(t, c.UserMessage, "delete products")
	assert.Contains(t, c.UserMessage, "permission")
}

func TestClassify_Generic(t *testing.T) {
	t.Run("Reject text is extracted", func(t *testing.T) {
		c := faultclass.Classify(errors.New("Call was rejected:\nReject text: Product is out of stock\nRequest ID: 4"))

		assert.Equal(t, faultclass.KindGeneric, c.Kind)
		assert.Equal(t, "Product is out of stock", c.UserMessage)
	})

	t.Run("Error prefix is stripped", func(t *testing.T) {
		c := faultclass.Classify(errors.New("Error: Coupon code expired"))

		assert.Equal(t, faultclass.KindGeneric, c.Kind)
		assert.Equal(t, "Coupon code expired", c.UserMessage)
	})

	t.Run("Too-short message falls back", func(t *testing.T) {
		c := faultclass.Classify(errors.New("x"))

		assert.Equal(t, faultclass.KindGeneric, c.Kind)
		assert.Equal(t, "Unable to complete the operation. Please try again.", c.UserMessage)
	})

	t.Run("Nil error yields unknown", func(t *testing.T) {
		c := faultclass.Classify(nil)

		assert.Equal(t, faultclass.KindGeneric, c.Kind)
		assert.NotEmpty(t, c.UserMessage)
	})
}

func TestClassify_GRPCStatusCodes(t *testing.T) {
	cases := []struct {
		code codes.Code
		want faultclass.Kind
	}{
		{codes.Unavailable, faultclass.KindUnavailable},
		{codes.DeadlineExceeded, faultclass.KindUnavailable},
		{codes.PermissionDenied, faultclass.KindUnauthorized},
		{codes.Unauthenticated, faultclass.KindUnauthorized},
		{codes.InvalidArgument, faultclass.KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			c := faultclass.Classify(status.Error(tc.code, "rpc layer detail"))
			assert.Equal(t, tc.want, c.Kind)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := []string{
		"IC0508: canister is stopped",
		"Unauthorized: only admins can delete products",
		"Error: Coupon code expired",
		"connection refused",
	}
	for _, msg := range inputs {
		first := faultclass.Classify(errors.New(msg))
		for i := 0; i < 10; i++ {
			again := faultclass.Classify(errors.New(msg))
			require.Equal(t, first.Kind, again.Kind)
			require.Equal(t, first.UserMessage, again.UserMessage)
		}
	}
}

func TestClassify_PassthroughAndHelpers(t *testing.T) {
	t.Run("Already classified errors pass through", func(t *testing.T) {
		orig := faultclass.Invalidf("shipping address requires a postal code")
		c := faultclass.Classify(fmt.Errorf("placing order: %w", orig))

		assert.Equal(t, faultclass.KindInvalid, c.Kind)
		assert.Equal(t, orig.UserMessage, c.UserMessage)
	})

	t.Run("As finds a classified error in a chain", func(t *testing.T) {
		wrapped := fmt.Errorf("mutation failed: %w", faultclass.New(faultclass.KindUnauthorized, "nope", nil))
		c, ok := faultclass.As(wrapped)

		require.True(t, ok)
		assert.Equal(t, faultclass.KindUnauthorized, c.Kind)
	})
}
