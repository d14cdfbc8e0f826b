package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pb257D1 = "1F2E3D4C5B6A79880123456789ABCDEF0011223344556677889900AABBCCDDEE"
	pb257D2 = "0F1E2D3C4B5A69788796A5B4C3D2E1F00112233445566778899AABBCCDDEEFF0"
	pb257Q1 = "a60336300b85ac9709e902a0fc4d2035ea33ebe47981e9d681af2659df804a0400"
	pb257Q2 = "df9ac755ef3663c85b3a9a313e994e7ee0add27ca70ce3c095b3b1e36ad4b69e00"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// field returns the value of a "name: value" output line.
func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, name+": ") {
			return strings.TrimPrefix(line, name+": ")
		}
	}
	t.Fatalf("no %s in output %q", name, out)
	return ""
}

func TestCurves(t *testing.T) {
	out, _, err := run(t, "", "curves")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[6], "DSTU_PB_257"), lines[6])
	assert.Contains(t, lines[6], "m=257")
	assert.Contains(t, lines[6], "h=4")
}

func TestKeygenSignVerify(t *testing.T) {
	out, _, err := run(t, "", "keygen")
	require.NoError(t, err)
	priv, pub := field(t, out, "private"), field(t, out, "public")
	assert.Len(t, pub, 66)

	out, _, err = run(t, "", "pub", "--key", priv)
	require.NoError(t, err)
	assert.Equal(t, pub, strings.TrimSpace(out))

	msg := "message to sign"
	for _, format := range []string{"short", "raw", "short-le", "raw-le"} {
		out, _, err = run(t, msg, "sign", "--key", priv, "--format", format)
		require.NoError(t, err, format)
		sig := strings.TrimSpace(out)

		out, _, err = run(t, msg, "verify", "--pub", pub, "--sig", sig, "--format", format)
		require.NoError(t, err, format)
		assert.Equal(t, "OK\n", out)

		_, _, err = run(t, msg+"!", "verify", "--pub", pub, "--sig", sig, "--format", format)
		assert.EqualError(t, err, "signature verification failed", format)
	}
}

func TestSignMessageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg")
	require.NoError(t, os.WriteFile(path, []byte("from a file"), 0o600))

	out, _, err := run(t, "", "sign", "--key", pb257D1, "--in", path, "--hash", "blake2b-256")
	require.NoError(t, err)
	sig := strings.TrimSpace(out)

	out, _, err = run(t, "from a file", "verify", "--pub", pb257Q1, "--sig", sig, "--hash", "blake2b-256")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, _, err = run(t, "from a file", "verify", "--pub", pb257Q1, "--sig", sig)
	assert.Error(t, err)
}

func TestPubFormats(t *testing.T) {
	out, _, err := run(t, "", "pub", "--key", pb257D1)
	require.NoError(t, err)
	assert.Equal(t, pb257Q1, strings.TrimSpace(out))

	out, _, err = run(t, "", "pub", "--key", pb257D1, "--pub-format", "octet")
	require.NoError(t, err)
	assert.Equal(t, "0421"+pb257Q1, strings.TrimSpace(out))

	out, _, err = run(t, "", "pub", "--key", pb257D1, "--pub-format", "hex")
	require.NoError(t, err)
	assert.Equal(t, "44A80DF5926AF81D6E98179E4EB33EA35204DFCA002E90997AC850B303603A6", strings.TrimSpace(out))

	_, _, err = run(t, "", "pub", "--key", pb257D1, "--pub-format", "pem")
	assert.Error(t, err)
}

func TestAgree(t *testing.T) {
	out1, _, err := run(t, "", "agree", "--key", pb257D1, "--peer", pb257Q2, "--ukm", "0102")
	require.NoError(t, err)
	out2, _, err := run(t, "", "agree", "--key", pb257D2, "--peer", pb257Q1, "--ukm", "0102")
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
	assert.Len(t, strings.TrimSpace(out1), 64)

	out3, _, err := run(t, "", "agree", "--key", pb257D2, "--peer", pb257Q1, "--ukm", "0102", "--kdf", "blake2b-512")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out3), 128)

	out4, _, err := run(t, "", "agree", "--key", pb257D2, "--peer", pb257Q1)
	require.NoError(t, err)
	assert.NotEqual(t, out2, out4)
}

func TestKeyStoreCommands(t *testing.T) {
	store := filepath.Join(t.TempDir(), "keys")

	out, _, err := run(t, "", "keygen", "--keystore", store, "--name", "alice", "--curve", "DSTU_PB_173")
	require.NoError(t, err)
	assert.NotContains(t, out, "private")
	pub := field(t, out, "public")

	out, _, err = run(t, "", "keys", "list", "--keystore", store)
	require.NoError(t, err)
	assert.Equal(t, "alice\tDSTU_PB_173\t"+pub+"\n", out)

	out, _, err = run(t, "hello", "sign", "--keystore", store, "--key-name", "alice")
	require.NoError(t, err)
	sig := strings.TrimSpace(out)
	_, _, err = run(t, "hello", "verify", "--curve", "DSTU_PB_173", "--pub", pub, "--sig", sig)
	require.NoError(t, err)

	_, _, err = run(t, "", "pub", "--keystore", store, "--key-name", "bob")
	assert.Error(t, err)

	_, _, err = run(t, "", "keys", "delete", "alice", "--keystore", store)
	require.NoError(t, err)
	_, _, err = run(t, "", "keys", "delete", "alice", "--keystore", store)
	assert.Error(t, err)

	_, _, err = run(t, "", "keys", "list")
	assert.Error(t, err)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dstu4145.yaml")
	require.NoError(t, os.WriteFile(path, []byte("curve: DSTU_PB_163\nformat: raw\n"), 0o600))

	out, _, err := run(t, "", "keygen", "--config", path)
	require.NoError(t, err)
	assert.Len(t, field(t, out, "public"), 42)

	t.Setenv("DSTU4145_CURVE", "DSTU_PB_179")
	out, _, err = run(t, "", "keygen", "--config", path)
	require.NoError(t, err)
	assert.Len(t, field(t, out, "public"), 46)

	out, _, err = run(t, "", "keygen", "--config", path, "--curve", "DSTU_PB_431")
	require.NoError(t, err)
	assert.Len(t, field(t, out, "public"), 108)

	_, _, err = run(t, "", "keygen", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogging(t *testing.T) {
	_, stderr, err := run(t, "", "curves", "--log-level", "debug", "--log-format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stderr, "{"), stderr)
	assert.Contains(t, stderr, `"msg":"configuration loaded"`)

	_, stderr, err = run(t, "", "curves", "--log-level", "debug", "--log-format", "logfmt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "configuration loaded")

	_, stderr, err = run(t, "", "curves")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown curve", []string{"keygen", "--curve", "DSTU_PB_999"}},
		{"bad log level", []string{"curves", "--log-level", "loud"}},
		{"bad log format", []string{"curves", "--log-format", "xml"}},
		{"bad signature format", []string{"sign", "--key", pb257D1, "--format", "der"}},
		{"unknown hash", []string{"sign", "--key", pb257D1, "--hash", "md5"}},
		{"unknown kdf", []string{"agree", "--key", pb257D1, "--peer", pb257Q2, "--kdf", "md5"}},
		{"missing key", []string{"sign"}},
		{"bad key", []string{"pub", "--key", "00"}},
		{"bad peer", []string{"agree", "--key", pb257D1, "--peer", "zz"}},
		{"short peer", []string{"agree", "--key", pb257D1, "--peer", "0102"}},
		{"bad digest", []string{"sign", "--key", pb257D1, "--digest", "xyz"}},
		{"zero digest", []string{"sign", "--key", pb257D1, "--digest", "0000"}},
		{"bad ukm", []string{"agree", "--key", pb257D1, "--peer", pb257Q2, "--ukm", "q"}},
		{"bad signature hex", []string{"verify", "--pub", pb257Q1, "--sig", "q"}},
		{"missing message file", []string{"sign", "--key", pb257D1, "--in", "/nonexistent/msg"}},
		{"extra argument", []string{"keygen", "x"}},
	}

	for _, test := range tests {
		_, _, err := run(t, "", test.args...)
		assert.Error(t, err, test.name)
	}
}
