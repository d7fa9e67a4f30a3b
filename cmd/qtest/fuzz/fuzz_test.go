package fuzz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qthai16/ringqueue/cmd/qtest/qstat"
)

func TestRunMatchesOracle(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		stats, err := Run(context.Background(), Config{Ops: 3000, Seed: seed})
		require.NoError(t, err, "seed %d", seed)
		for _, o := range ops {
			assert.Positive(t, stats.Count(o.name), "op %s never ran with seed %d", o.name, seed)
		}
	}
}

func TestRunWithFailureInjection(t *testing.T) {
	stats, err := Run(context.Background(), Config{Ops: 3000, Seed: 5, FailProbability: 30})
	require.NoError(t, err)
	assert.Positive(t, stats.Errors(qstat.NoMemoryErrKey))
	assert.Zero(t, stats.Errors(qstat.MismatchErrKey))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{Ops: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPickCoversWeights(t *testing.T) {
	total := 0
	for _, o := range ops {
		total += o.weight
	}
	assert.Equal(t, "ih", pick(0).name)
	assert.Equal(t, ops[len(ops)-1].name, pick(total-1).name)
}

func TestDefaults(t *testing.T) {
	c := Config{Alphabet: 40}
	c.setDefaults()
	assert.Equal(t, 10000, c.Ops)
	assert.Equal(t, 4, c.Alphabet)
	assert.Equal(t, 3, c.MaxLen)
	assert.NotNil(t, c.Logger)
}
