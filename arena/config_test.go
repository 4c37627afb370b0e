package arena

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1792, cfg.ArenaSize())
	require.Equal(t, 16, cfg.MaxSlots())
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]Config{
		"page size not power of two": {PageSize: 300, PageCount: 7, MinClass: 16},
		"page size below two slots":  {PageSize: 16, PageCount: 7, MinClass: 16},
		"min class below floor":      {PageSize: 256, PageCount: 7, MinClass: 8},
		"min class not power of two": {PageSize: 256, PageCount: 7, MinClass: 24},
		"no pages":                   {PageSize: 256, PageCount: 0, MinClass: 16},
		"arena exceeds address":      {PageSize: 1 << 20, PageCount: 1 << 12, MinClass: 16},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_RegisterFlags(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.Equal(t, DefaultConfig(), cfg)

	require.NoError(t, fs.Parse([]string{"-arena.page-size=4096", "-arena.page-count=32", "-arena.min-class=32"}))
	require.Equal(t, Config{PageSize: 4096, PageCount: 32, MinClass: 32}, cfg)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 128, cfg.MaxSlots())
}
