package docbind_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/docbind"
)

type Celsius float64

type Label string

func TestAssignScalars(t *testing.T) {
	i8, err := docbind.Assign[int8](int64(-12))
	require.NoError(t, err)
	require.Equal(t, int8(-12), i8)

	u, err := docbind.Assign[uint16](int32(65535))
	require.NoError(t, err)
	require.Equal(t, uint16(65535), u)

	n, err := docbind.Assign[int](float64(3))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	c, err := docbind.Assign[Celsius](int64(21))
	require.NoError(t, err)
	require.Equal(t, Celsius(21), c)

	l, err := docbind.Assign[Label]("x")
	require.NoError(t, err)
	require.Equal(t, Label("x"), l)

	for name, fn := range map[string]func() error{
		"overflow":      func() error { _, err := docbind.Assign[int8](int64(300)); return err },
		"negative uint": func() error { _, err := docbind.Assign[uint](int64(-1)); return err },
		"fraction":      func() error { _, err := docbind.Assign[int64](2.5); return err },
		"nan":           func() error { _, err := docbind.Assign[int64](math.NaN()); return err },
		"cross family":  func() error { _, err := docbind.Assign[string](int64(1)); return err },
	} {
		require.True(t, isErr(fn(), docbind.ErrInvalidValue), name)
	}
}

func TestAssignNilAndPointers(t *testing.T) {
	s, err := docbind.Assign[[]string](nil)
	require.NoError(t, err)
	require.Nil(t, s)

	p, err := docbind.Assign[*int](int64(7))
	require.NoError(t, err)
	require.Equal(t, 7, *p)

	green := Green
	c, err := docbind.Assign[Color](&green)
	require.NoError(t, err)
	require.Equal(t, Green, c)
}

func TestAssignContainers(t *testing.T) {
	tags, err := docbind.Assign[[]string]([]any{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tags)

	arr, err := docbind.Assign[[2]int](docbind.NewDeque(int64(1), int64(2)))
	require.NoError(t, err)
	require.Equal(t, [2]int{1, 2}, arr)

	_, err = docbind.Assign[[3]int]([]any{int64(1)})
	require.True(t, isErr(err, docbind.ErrInvalidValue))

	set, err := docbind.Assign[*docbind.Set]([]int{1, 1, 2})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	om := docbind.NewOrderedMap()
	om.Set("a", int64(1))
	om.Set("b", int64(2))
	m, err := docbind.Assign[map[string]int32](om)
	require.NoError(t, err)
	require.Equal(t, map[string]int32{"a": 1, "b": 2}, m)

	nested, err := docbind.Assign[map[string][]float32](map[string]any{"x": []any{1.5, int64(2)}})
	require.NoError(t, err)
	require.Equal(t, map[string][]float32{"x": {1.5, 2}}, nested)

	_, err = docbind.Assign[map[int]string](om)
	require.True(t, isErr(err, docbind.ErrInvalidValue))
}
