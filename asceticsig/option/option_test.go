package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSome(t *testing.T) {
	t.Run("zero value is present", func(t *testing.T) {
		o := Some(0)
		assert.True(t, o.IsSome())
		assert.False(t, o.IsNothing())
		assert.Equal(t, 0, o.Unwrap())
	})

	t.Run("nil pointer is present", func(t *testing.T) {
		o := Some[*int](nil)
		v, ok := o.Get()
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestNothing(t *testing.T) {
	o := Nothing[string]()
	v, ok := o.Get()
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "fallback", o.UnwrapOr("fallback"))
	assert.Panics(t, func() { o.Unwrap() })
}

func TestIfSome(t *testing.T) {
	var seen []int
	assert.True(t, Some(3).IfSome(func(v int) { seen = append(seen, v) }))
	assert.False(t, Nothing[int]().IfSome(func(v int) { seen = append(seen, v) }))
	assert.Equal(t, []int{3}, seen)
}

func TestMap(t *testing.T) {
	double := func(v int) int { return v * 2 }
	assert.Equal(t, Some(4), Map(Some(2), double))
	assert.True(t, Map(Nothing[int](), double).IsNothing())
}

func TestString(t *testing.T) {
	assert.Equal(t, "Some(changed)", Some("changed").String())
	assert.Equal(t, "Nothing", Nothing[string]().String())
}
