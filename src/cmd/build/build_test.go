package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBinaryName(t *testing.T) {
	assert.Equal(t, "pigeonplanner-db-linux-amd64", generateBinaryName("linux", "amd64"))
	assert.Equal(t, "pigeonplanner-db-windows-386.exe", generateBinaryName("windows", "386"))
}

func TestGetBuildFlags(t *testing.T) {
	t.Setenv("APP_VERSION", "2.3.0")
	t.Setenv("SENTRY_DSN", "")

	dev := GetBuildFlags(true)
	assert.Equal(t, "dev", dev.Tags)
	assert.Empty(t, dev.DebugLdFlags)
	assert.Contains(t, dev.LdFlags, "-X "+constsPath+".AppVersion=2.3.0")
	assert.NotContains(t, dev.LdFlags, "main.SentryDSN")

	t.Setenv("SENTRY_DSN", "https://key@sentry.example.com/1")
	release := GetBuildFlags(false)
	assert.Equal(t, "release", release.Tags)
	assert.Equal(t, "-s -w", release.DebugLdFlags)
	assert.Contains(t, release.LdFlags, "-X main.SentryDSN=https://key@sentry.example.com/1")
}
