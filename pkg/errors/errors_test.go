package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/authorgraph/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "publication", ID: "Q42"}
		assert.Equal(t, "publication with ID Q42 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("author", "Q1")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestAmbiguousMatchError(t *testing.T) {
	err := pkgerrors.NewAmbiguousMatchError("Jane Doe", []pkgerrors.ScoredCandidate{
		{ID: "Q1", Label: "Jane Doe", Score: 100},
		{ID: "Q2", Score: 100},
	})

	assert.True(t, pkgerrors.IsAmbiguous(err))
	assert.False(t, pkgerrors.IsUnresolvable(err))
	assert.Contains(t, err.Error(), `"Jane Doe"`)
	assert.Contains(t, err.Error(), "Q1 (Jane Doe, score 100)")
	assert.Contains(t, err.Error(), "Q2 (score 100)")

	unscored := pkgerrors.NewAmbiguousMatchError("Jane Doe", []pkgerrors.ScoredCandidate{{ID: "Q3"}, {ID: "Q4", Label: "J. Doe"}})
	assert.Contains(t, unscored.Error(), "[Q3, Q4 (J. Doe)]")
}

func TestUnresolvableError(t *testing.T) {
	err := pkgerrors.NewUnresolvableError("J. Doe", "no external identifiers")
	assert.True(t, pkgerrors.IsUnresolvable(err))
	assert.Equal(t, `unresolvable author "J. Doe": no external identifiers`, err.Error())

	anon := pkgerrors.NewUnresolvableError("", "no signal")
	assert.Equal(t, "unresolvable author: no signal", anon.Error())
}

func TestNetworkError(t *testing.T) {
	base := errors.New("connection reset")

	t.Run("wrap", func(t *testing.T) {
		err := pkgerrors.WrapNetwork("load", "Q42", base)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNetwork(err))
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "load Q42 failed: connection reset", err.Error())
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapNetwork("load", "Q42", nil))
	})

	t.Run("configuration stays fatal", func(t *testing.T) {
		cfg := pkgerrors.NewConfigError("graph", "no credentials", nil)
		err := pkgerrors.WrapNetwork("search", "", cfg)
		assert.True(t, pkgerrors.IsFatal(err))
		assert.False(t, pkgerrors.IsNetwork(err))
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("graph", "snapshot path is required", nil)
	assert.Equal(t, "configuration error in graph: snapshot path is required", err.Error())
	assert.True(t, pkgerrors.IsFatal(err))
	assert.True(t, pkgerrors.IsFatal(fmt.Errorf("startup: %w", err)))

	noComponent := &pkgerrors.ConfigError{Message: "bad"}
	assert.Equal(t, "configuration error: bad", noComponent.Error())
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("load", "publication", "Q9", pkgerrors.NewNetworkError("load", "Q9", errors.New("timeout")))
	var resErr *pkgerrors.ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "load", resErr.Operation)
	assert.Equal(t, "publication", resErr.Resource)
	assert.True(t, pkgerrors.IsNetwork(err))

	assert.NoError(t, pkgerrors.WrapResource("load", "publication", "Q9", nil))
}

func TestParseAndIOErrors(t *testing.T) {
	parseErr := pkgerrors.WrapParse("yaml", "graph.yaml", errors.New("bad indent"))
	assert.Equal(t, "parse error in yaml file graph.yaml: bad indent", parseErr.Error())

	inline := pkgerrors.NewParseError("json", "", "unexpected EOF", nil)
	assert.Equal(t, "json parse error: unexpected EOF", inline.Error())

	base := errors.New("disk full")
	ioErr := pkgerrors.WrapIO("write", "/tmp/out.yaml", base)
	assert.ErrorIs(t, ioErr, base)
	assert.Contains(t, ioErr.Error(), "/tmp/out.yaml")
}

func TestValidationError(t *testing.T) {
	err := pkgerrors.NewValidationError("concurrency", 0, "must be positive")
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.Equal(t, "validation failed for field concurrency: must be positive", err.Error())
}

func TestLimiterSentinels(t *testing.T) {
	limited := fmt.Errorf("read limiter: %w", pkgerrors.ErrRateLimited)
	assert.True(t, pkgerrors.IsRateLimited(limited))
	assert.False(t, pkgerrors.IsTimeout(limited))

	timeout := fmt.Errorf("write limiter: %w", pkgerrors.ErrTimeout)
	assert.True(t, pkgerrors.IsTimeout(timeout))
	assert.False(t, pkgerrors.IsFatal(timeout))
}
