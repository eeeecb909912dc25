package nagle_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MasterOfBinary/gonagle/nagle"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "open", nagle.StateOpen.String())
	assert.Equal(t, "completed", nagle.StateCompleted.String())
	assert.Equal(t, "disposed", nagle.StateDisposed.String())
	assert.Equal(t, "unknown", nagle.State(42).String())
}

func TestBatchReason_String(t *testing.T) {
	assert.Equal(t, "full", nagle.ReasonFull.String())
	assert.Equal(t, "timeout", nagle.ReasonTimeout.String())
	assert.Equal(t, "canceled", nagle.ReasonCanceled.String())
	assert.Equal(t, "closed", nagle.ReasonClosed.String())
	assert.Equal(t, "unknown", nagle.BatchReason(-1).String())
}

func TestParseDrainPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    nagle.DrainPolicy
		wantErr bool
	}{
		{"", nagle.DrainAfterClose, false},
		{"drain", nagle.DrainAfterClose, false},
		{" Reject ", nagle.RejectAfterClose, false},
		{"discard", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := nagle.ParseDrainPolicy(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, nagle.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDrainPolicy_YAML(t *testing.T) {
	var doc struct {
		Policy nagle.DrainPolicy `yaml:"policy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("policy: reject\n"), &doc))
	assert.Equal(t, nagle.RejectAfterClose, doc.Policy)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "policy: reject\n", string(out))

	require.Error(t, yaml.Unmarshal([]byte("policy: sometimes\n"), &doc))

	_, err = nagle.DrainPolicy(9).MarshalText()
	require.Error(t, err)
}

func TestClosedError(t *testing.T) {
	err := error(&nagle.ClosedError{Op: "Add", State: nagle.StateDisposed})
	assert.Equal(t, "nagle: Add on disposed collection", err.Error())
	assert.True(t, errors.Is(err, nagle.ErrClosed))
	assert.False(t, errors.Is(err, nagle.ErrInvalidArgument))
	assert.True(t, nagle.IsDisposed(err))
	assert.False(t, nagle.IsCompleted(err))
	assert.False(t, nagle.IsCompleted(errors.New("other")))
}

func TestArgumentError(t *testing.T) {
	err := error(&nagle.ArgumentError{Name: "capacity", Value: -1})
	assert.Equal(t, "nagle: invalid capacity: -1", err.Error())
	assert.True(t, errors.Is(err, nagle.ErrInvalidArgument))
}
