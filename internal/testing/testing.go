// package testing contains helpers shared by the schemax test suites.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// ErrInjected is returned by every failing helper in this package.
var ErrInjected = errors.New("injected failure")

// BrokenWriter fails every write.
type BrokenWriter struct{}

func (BrokenWriter) Write([]byte) (int, error) { return 0, ErrInjected }

// FlakyWriter forwards the first Allowed writes to W and fails the rest.
type FlakyWriter struct {
	W       io.Writer
	Allowed int
	calls   int
}

func (f *FlakyWriter) Write(p []byte) (int, error) {
	f.calls++
	if f.calls > f.Allowed {
		return 0, ErrInjected
	}
	return f.W.Write(p)
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (fn RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return fn(r) }

// StubClient returns a client whose transport always answers with resp and err.
func StubClient(resp *http.Response, err error) *http.Client {
	return &http.Client{Transport: RoundTripFunc(func(*http.Request) (*http.Response, error) {
		return resp, err
	})}
}

// BrokenBody is a response body whose reads fail.
type BrokenBody struct{}

func (BrokenBody) Read([]byte) (int, error) { return 0, ErrInjected }
func (BrokenBody) Close() error             { return nil }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	switch {
	case err != nil:
		t.Errorf("expected file %s: %v", path, err)
	case info.IsDir():
		t.Errorf("expected %s to be a file, found a directory", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	switch {
	case err != nil:
		t.Errorf("expected directory %s: %v", path, err)
	case !info.IsDir():
		t.Errorf("expected %s to be a directory", path)
	}
}

// MustReadFile returns the contents of path or stops the test.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
