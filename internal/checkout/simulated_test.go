package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProcessorApproves(t *testing.T) {
	p := SimulatedProcessor{Delay: time.Millisecond}
	res, err := p.Process(context.Background(), PaymentRequest{AttemptID: "0f8fad5b-d9cb-469f-a165-70867728950e"})
	require.NoError(t, err)
	assert.Equal(t, "SIM-0F8FAD5BD9CB", res.Reference)
}

func TestSimulatedProcessorHonoursContext(t *testing.T) {
	p := SimulatedProcessor{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, PaymentRequest{AttemptID: "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedProcessorFailure(t *testing.T) {
	declined := errors.New("declined")
	_, err := SimulatedProcessor{Err: declined}.Process(context.Background(), PaymentRequest{})
	assert.ErrorIs(t, err, declined)
}
