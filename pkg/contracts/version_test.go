package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, DataFormatVersion, info.DataFormat)

	full := GetFullVersionString()
	assert.True(t, strings.HasPrefix(full, "engcli v"+Version))
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
