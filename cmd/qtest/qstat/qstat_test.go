package qstat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddCmd(t *testing.T) {
	qs := NewQStats()
	qs.AddCmd("it", false)
	qs.AddCmd("ih", false)
	qs.AddCmd("it", true)
	assert.Equal(t, int64(2), qs.Count("it"))
	assert.Equal(t, int64(1), qs.Count("ih"))
	assert.Equal(t, int64(0), qs.Count("sort"))
	assert.Equal(t, "ih", qs.cmds[0].Name, "commands stay sorted")
	assert.Equal(t, int64(1), qs.cmds[1].Failed.Load())
}

func TestIncErrStat(t *testing.T) {
	qs := NewQStats()
	qs.IncErrStat(NoMemoryErrKey)
	qs.IncErrStat(NoMemoryErrKey)
	qs.IncErrStat("unknown")
	assert.Equal(t, int64(2), qs.Errors(NoMemoryErrKey))
	assert.Equal(t, int64(0), qs.Errors("unknown"))
	assert.Contains(t, qs.String(), "\"no_memory\": 2")
}

func TestRender(t *testing.T) {
	qs := NewQStats()
	qs.AddCmd("sort", false)
	var buf bytes.Buffer
	qs.Render(&buf)
	assert.Contains(t, buf.String(), "COMMAND")
	assert.Contains(t, buf.String(), "sort")
	assert.Contains(t, buf.String(), "ring_broken")
}
