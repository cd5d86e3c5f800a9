package consts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPrefDir(t *testing.T) {
	t.Setenv(PrefDirEnv, "/tmp/pp-prefs")
	assert.Equal(t, "/tmp/pp-prefs", DefaultPrefDir())

	t.Setenv(PrefDirEnv, "")
	assert.Contains(t, DefaultPrefDir(), PrefDirName)
}

func TestGetAppInfo(t *testing.T) {
	info := GetAppInfo()
	assert.Equal(t, AppName, info.AppName)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.NotZero(t, info.Pid)
}
