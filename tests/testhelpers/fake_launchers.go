// Package testhelpers installs stand-ins for parallel launchers so launches
// can be exercised on machines without an MPI stack or a scheduler.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FakeLauncherScript accepts the flags any of our launchers is given, then
// runs the remaining command once per task (-n, default 1). It exits with the
// status of the last failing task, or 0.
const FakeLauncherScript = `#!/bin/sh
n=1
while [ $# -gt 0 ]; do
  case "$1" in
    -n) n=$2; shift 2 ;;
    -N|-T|-g) shift 2 ;;
    --*=*) shift ;;
    *) break ;;
  esac
done
rc=0
i=0
while [ $i -lt $n ]; do
  "$@" || rc=$?
  i=$((i + 1))
done
exit $rc
`

// InstallFakeLaunchers writes a fake launcher for each name into a temp dir
// and puts that dir at the front of PATH for the rest of the test.
// Returns the dir.
func InstallFakeLaunchers(t testing.TB, names ...string) string {
	t.Helper()
	dir := writeFakeLaunchers(t, names)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

// IsolateFakeLaunchers is like InstallFakeLaunchers but PATH holds only the
// fakes, so a real launcher on the machine can't be found by lookups.
func IsolateFakeLaunchers(t testing.TB, names ...string) string {
	t.Helper()
	dir := writeFakeLaunchers(t, names)
	t.Setenv("PATH", dir)
	return dir
}

func writeFakeLaunchers(t testing.TB, names []string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if strings.ContainsRune(name, filepath.Separator) {
			t.Fatalf("fake launcher name %q must be a bare name", name)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(FakeLauncherScript), 0755); err != nil {
			t.Fatalf("couldn't install fake launcher %s: %v", name, err)
		}
	}
	return dir
}
