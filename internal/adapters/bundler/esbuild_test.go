package bundler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/bundler"
	"go.trai.ch/quill/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestBundle_ResolvesModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "boot.js"), `
var greet = require('./greet');
window.message = greet('prose');
`)
	writeFile(t, filepath.Join(root, "app", "greet.js"), `
module.exports = function (name) { return 'hello ' + name + ' from greetModule'; };
`)

	b := bundler.New()
	out, err := b.Bundle(context.Background(), domain.BundleRequest{
		Entry: "app/boot.js",
		Root:  root,
	})
	require.NoError(t, err)

	code := string(out)
	assert.Contains(t, code, "from greetModule")
	assert.Contains(t, code, "window.message")
	assert.NotContains(t, code, "sourceMappingURL")
}

func TestBundle_ExternalAndSourceMap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "test", "index.js"), `
var chai = require('chai');
chai.should();
`)

	b := bundler.New()
	out, err := b.Bundle(context.Background(), domain.BundleRequest{
		Entry:     "test/index.js",
		Root:      root,
		External:  []string{"chai", "mocha"},
		SourceMap: true,
	})
	require.NoError(t, err)

	code := string(out)
	assert.Contains(t, code, `require("chai")`)
	assert.Contains(t, code, "sourceMappingURL=data:application/json;base64,")
}

func TestBundle_MissingModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", "boot.js"), "require('./missing');\n")

	b := bundler.New()
	_, err := b.Bundle(context.Background(), domain.BundleRequest{Entry: "app/boot.js", Root: root})
	require.ErrorIs(t, err, domain.ErrBundleFailed)
	assert.Contains(t, err.Error(), "./missing")
}

func TestBundle_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bundler.New().Bundle(ctx, domain.BundleRequest{Entry: "app/boot.js", Root: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMinify(t *testing.T) {
	b := bundler.New()
	src := []byte(`
function computeTotal(firstValue, secondValue) {
  var combinedResult = firstValue + secondValue;
  return combinedResult;
}
window.total = computeTotal(1, 2);
`)

	out, err := b.Minify(context.Background(), src)
	require.NoError(t, err)

	assert.Less(t, len(out), len(src))
	assert.NotContains(t, string(out), "combinedResult")
	assert.Contains(t, string(out), "window.total")
}

func TestMinify_SyntaxError(t *testing.T) {
	_, err := bundler.New().Minify(context.Background(), []byte("function ("))
	require.ErrorIs(t, err, domain.ErrMinifyFailed)
}
