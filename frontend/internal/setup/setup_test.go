package setup

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbs-portal/portal/frontend/templates"
	"github.com/tbs-portal/portal/shared/config"
)

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)

	_, err = dict(1, 2)
	assert.Error(t, err)
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "0", seconds(0))
	assert.Equal(t, "1", seconds(1))
	assert.Equal(t, "2", seconds(2000))
	assert.Equal(t, "3", seconds(2001))
}

func TestLoadTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html":     {Data: []byte(`<p>{{template "content" .}}</p>`)},
		"partials.html": {Data: []byte(`{{define "x"}}{{seconds .}}{{end}}`)},
		"page.html":     {Data: []byte(`{{define "content"}}{{template "x" 1500}}{{end}}`)},
		"notes.txt":     {Data: []byte("ignored")},
	}

	tmpl, err := loadTemplates(fsys)
	require.NoError(t, err)
	require.Len(t, tmpl, 1)

	var buf bytes.Buffer
	require.NoError(t, tmpl["page.html"].Execute(&buf, nil))
	assert.Equal(t, "<p>2</p>", buf.String())
}

func TestLoadTemplates_Embedded(t *testing.T) {
	tmpl, err := loadTemplates(templates.FS)
	require.NoError(t, err)
	assert.Contains(t, tmpl, "index.html")
}

func TestSetupDependencies(t *testing.T) {
	cfg := config.Default()
	cfg.Public.Notice = "**Welcome**"

	deps, err := SetupDependencies(cfg)
	require.NoError(t, err)
	defer deps.Cleanup()

	assert.NotNil(t, deps.Handler)
	assert.NotNil(t, deps.Metrics)
	assert.True(t, deps.FormLimiter.Allow("127.0.0.1"))
	assert.True(t, deps.AccountLimiter.Allow("email:a@gmail.com"))

	families, err := deps.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
