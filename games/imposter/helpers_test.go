/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// scriptedRand replays fixed values. Exhausted scripts return zero.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[0]
	r.floats = r.floats[1:]

	return f
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]

	return v % n
}

func (r *scriptedRand) Shuffle(int, func(i, j int)) {}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) (*PersistedState, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).(*PersistedState)

	return ps, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, state PersistedState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func threeTopics() []string {
	return []string{"Food", "Cities", "Sports"}
}
