package menus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms/menus"
)

func TestPoolRegister(t *testing.T) {
	pool := menus.NewPool()

	err := pool.Register(menus.Extender{Name: "CategoryMenu", Enabled: true})
	require.NoError(t, err)

	ext, ok := pool.Get("CategoryMenu")
	require.True(t, ok)
	assert.Equal(t, "CategoryMenu", ext.Name)
	assert.True(t, ext.Enabled)
}

func TestPoolRegisterEmptyName(t *testing.T) {
	pool := menus.NewPool()

	err := pool.Register(menus.Extender{Enabled: true})
	assert.Error(t, err)
}

func TestPoolGetMissing(t *testing.T) {
	pool := menus.NewPool()

	_, ok := pool.Get("BreadcrumbMenu")
	assert.False(t, ok)
}

func TestEnabledNames(t *testing.T) {
	pool := menus.NewPool()
	require.NoError(t, pool.Register(menus.Extender{Name: "CategoryMenu", Enabled: true}))
	require.NoError(t, pool.Register(menus.Extender{Name: "LegacyMenu"}))
	require.NoError(t, pool.Register(menus.Extender{Name: "TagMenu", Enabled: true}))

	assert.Equal(t, []string{"CategoryMenu", "TagMenu"}, pool.EnabledNames())

	// Disabling an extender by re-registering removes it from the list.
	require.NoError(t, pool.Register(menus.Extender{Name: "TagMenu"}))
	assert.Equal(t, []string{"CategoryMenu"}, pool.EnabledNames())
}
